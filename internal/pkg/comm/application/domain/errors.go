package comm

import "errors"

// Error taxonomy for the communication subsystem. Controllers map these onto
// transport status codes; use cases wrap infrastructure failures separately.
var (
	// ErrUnauthorized means no authenticated identity was supplied. Kept
	// distinct from role denials so callers can choose 401 vs 403 semantics.
	ErrUnauthorized = errors.New("comm: missing authenticated identity")

	// ErrNotFound covers unknown peers and unknown bookings.
	ErrNotFound = errors.New("comm: not found")

	// ErrValidation covers empty content and malformed envelopes.
	ErrValidation = errors.New("comm: validation failed")

	// ErrUnavailable means the recipient has no open connection. Chat falls
	// back to offline persistence; signaling surfaces this to the caller.
	ErrUnavailable = errors.New("comm: recipient has no open connection")

	// ErrForbidden is the match target for every ForbiddenError.
	ErrForbidden = errors.New("comm: forbidden")
)

// Deny reasons carried by ForbiddenError. They are specific on purpose:
// clients show these verbatim instead of a generic 403.
const (
	ReasonComplaintSystem  = "customers cannot contact admin directly, use the complaint system"
	ReasonSameRolePeers    = "peers of the same role cannot chat"
	ReasonNotParticipant   = "not a participant of this booking"
	ReasonChannelClosed    = "channel closed"
	ReasonChannelNotActive = "channel not active"
	ReasonNoDisclosure     = "phone number is not disclosed without an active booking"
)

// ForbiddenError is a role or participation denial with a human-readable reason.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "comm: forbidden: " + e.Reason }

// Is makes errors.Is(err, ErrForbidden) match any ForbiddenError.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// Forbidden builds a denial with the given reason.
func Forbidden(reason string) error { return &ForbiddenError{Reason: reason} }

// DenyReason extracts the reason of a ForbiddenError, or "" for other errors.
func DenyReason(err error) string {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}
