package comm

// CanSeePhone decides whether a requester may see the target's phone number.
//
// Admin sees anyone. A live shared booking discloses both ways. Provider sees
// admin unconditionally; customer never sees admin directly. Without an active
// booking, customer and provider stay undisclosed to each other so numbers do
// not leak before a commitment exists.
func CanSeePhone(requester, target Role, hasActiveBooking bool) bool {
	if requester == RoleAdmin {
		return true
	}
	if hasActiveBooking {
		return true
	}
	if requester == RoleProvider && target == RoleAdmin {
		return true
	}
	return false
}
