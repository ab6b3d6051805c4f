package domain

import "strings"

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Level returns the numeric level of r. Unknown roles have level 0.
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleStaff:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

// ParseRole accepts any casing of a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// HasPermission reports whether a session holding role may perform an
// operation that requires required.
func HasPermission(role, required Role) bool {
	if !role.Valid() || !required.Valid() {
		return false
	}
	return role.Level() >= required.Level()
}
