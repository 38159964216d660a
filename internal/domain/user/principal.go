package user

import "strings"

// Principal is the identity resolved from a session token by the identity provider.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// HasAnyRole reports whether the principal holds one of roles, case-insensitively.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}
