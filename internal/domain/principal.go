package domain

// Principal is the authenticated identity injected by the caller.
type Principal struct {
	UserID string
	Role   Role
}

// CanMutate reports whether the principal may change a goal owned by ownerID.
// Owners may change their own goals; admins may change any goal.
func (p Principal) CanMutate(ownerID string) bool {
	return p.Role == RoleAdmin || (p.UserID != "" && p.UserID == ownerID)
}

// User is a registered account.
type User struct {
	ID       string
	FullName string
	Role     Role
}
