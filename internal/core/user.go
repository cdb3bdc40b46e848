package core

import "errors"

const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "bendahara"
)

type (
	Role string

	User struct {
		Username string `json:"username"`
		Role     Role   `json:"role"`
	}
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrForbidden          = errors.New("role not permitted")
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTreasurer
}

// Allows reports whether u holds one of roles.
func (u *User) Allows(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
