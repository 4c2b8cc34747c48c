package comm

// Role is the marketplace-wide role of an identity.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// Identity is the read-only projection of a user owned by the auth subsystem.
// It is immutable for the duration of a connection.
type Identity struct {
	ID    string `db:"id"`
	Role  Role   `db:"role"`
	Phone string `db:"phone"`
}

// BookingStatus mirrors the booking subsystem's lifecycle states.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Live reports whether the booking currently carries an active channel.
func (s BookingStatus) Live() bool {
	return s == BookingConfirmed || s == BookingInProgress
}

// Terminated reports whether the booking channel is closed for good.
// This transition is one-way; a completed or cancelled booking never reopens.
func (s BookingStatus) Terminated() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// BookingContext is the slice of a booking the communication layer needs:
// its two parties and the current status. It is looked up fresh on every
// authorization decision so grants never go stale.
type BookingContext struct {
	ID         string        `db:"id"`
	CustomerID string        `db:"customer_user_id"`
	ProviderID string        `db:"provider_user_id"`
	Status     BookingStatus `db:"status"`
}

// HasParticipant tells whether userID is one of the booking's two parties.
func (b BookingContext) HasParticipant(userID string) bool {
	return userID != "" && (userID == b.CustomerID || userID == b.ProviderID)
}

// Counterpart returns the other party of the booking, or "" if userID is
// not a participant.
func (b BookingContext) Counterpart(userID string) string {
	switch userID {
	case b.CustomerID:
		return b.ProviderID
	case b.ProviderID:
		return b.CustomerID
	}
	return ""
}
