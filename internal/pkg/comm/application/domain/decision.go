package comm

// Decision is the recomputed-per-request grant for a communication attempt.
// When Allowed is false, Err carries the denial from the error taxonomy.
type Decision struct {
	Allowed bool
	Channel ChannelType
	Err     error
}

// Allow grants the attempt on the given channel.
func Allow(ch ChannelType) Decision { return Decision{Allowed: true, Channel: ch} }

// Deny rejects the attempt with the given error.
func Deny(err error) Decision { return Decision{Err: err} }

type rolePair struct {
	Sender   Role
	Receiver Role
}

// rolePairGrants is the full role-pair decision table. Keeping the matrix as
// data lets tests enumerate it instead of walking nested conditionals.
// Provider and admin always meet on the admin channel, in either direction,
// so an admin reply lands in the same channel the provider opened.
var rolePairGrants = map[rolePair]Decision{
	{RoleAdmin, RoleCustomer}:    Allow(ChannelDirect),
	{RoleAdmin, RoleProvider}:    Allow(ChannelAdmin),
	{RoleAdmin, RoleAdmin}:       Allow(ChannelDirect),
	{RoleProvider, RoleAdmin}:    Allow(ChannelAdmin),
	{RoleCustomer, RoleProvider}: Allow(ChannelDirect),
	{RoleProvider, RoleCustomer}: Allow(ChannelDirect),
	{RoleCustomer, RoleAdmin}:    Deny(Forbidden(ReasonComplaintSystem)),
	{RoleProvider, RoleProvider}: Deny(Forbidden(ReasonSameRolePeers)),
	{RoleCustomer, RoleCustomer}: Deny(Forbidden(ReasonSameRolePeers)),
}

// CanCommunicate decides whether sender may message receiver, and on which
// channel. Pure: callers own persistence and relay.
//
// A booking-scoped attempt is participation-gated, not role-gated: both ends
// must be a party of the booking or admin, regardless of the role pairing.
// The booking status is consulted as passed in, so the grant always reflects
// the latest lifecycle state.
func CanCommunicate(sender, receiver Identity, booking *BookingContext) Decision {
	if sender.ID == "" {
		return Deny(ErrUnauthorized)
	}
	if receiver.ID == "" || !receiver.Role.Valid() {
		return Deny(ErrNotFound)
	}
	if !sender.Role.Valid() {
		return Deny(ErrUnauthorized)
	}

	if booking != nil {
		if !booking.HasParticipant(sender.ID) && sender.Role != RoleAdmin {
			return Deny(Forbidden(ReasonNotParticipant))
		}
		if !booking.HasParticipant(receiver.ID) && receiver.Role != RoleAdmin {
			return Deny(Forbidden(ReasonNotParticipant))
		}
		switch {
		case booking.Status.Live():
			return Allow(ChannelBooking)
		case booking.Status.Terminated():
			return Deny(Forbidden(ReasonChannelClosed))
		default:
			return Deny(Forbidden(ReasonChannelNotActive))
		}
	}

	d, ok := rolePairGrants[rolePair{sender.Role, receiver.Role}]
	if !ok {
		return Deny(ErrNotFound)
	}
	return d
}
