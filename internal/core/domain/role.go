package domain

// Role describes what a user is allowed to do inside a workspace.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOwner     Role = "OWNER"
	RoleManager   Role = "MANAGER"
	RolePerformer Role = "PERFORMER"
	RoleMember    Role = "MEMBER"
)

// Caller is the resolved identity of the user performing an operation.
// Approval guards are expressed as pure predicates over this value.
type Caller struct {
	UserID      string
	Email       string
	WorkspaceID string
	Roles       []Role
}

// HasRole reports whether the caller carries the given role.
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminLike reports whether the caller may bypass assignee guards.
// Admins and workspace owners count as admin-like.
func (c Caller) IsAdminLike() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleOwner)
}
