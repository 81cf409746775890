// Package auth resolves bearer credentials into caller identities.
// Token issuance and refresh live with the external identity provider;
// this service only consumes the resolved (user id, role) pair.
package auth

// Role is the caller's capability level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is a resolved, authenticated caller. A nil *Identity means the
// caller is anonymous.
type Identity struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
