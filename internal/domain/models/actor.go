package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ScopeUser  = "user-permission"
	ScopeAdmin = "admin-permission"
)

// Actor is the already-authenticated caller of a use case. Role and Scopes
// are independent: tokens are issued with scopes derived from the role, but
// authorization decisions look at the granted scopes only.
type Actor struct {
	ID     int64
	Role   string
	Scopes []string
}

func (a Actor) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ScopeForRole maps a user role to the token scope granted at login.
func ScopeForRole(role string) string {
	if role == RoleAdmin {
		return ScopeAdmin
	}
	return ScopeUser
}
