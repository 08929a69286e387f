package models

import "slices"

// Principal is the identity attached to one request after successful token
// validation. It is a value: copy it, never share a pointer across requests.
type Principal struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// NewPrincipal builds a principal from a user record.
func NewPrincipal(user *User) Principal {
	return Principal{
		Username:    user.Username,
		Authorities: slices.Clone(user.Authorities()),
	}
}

// HasAuthority reports whether the principal holds authority a.
func (p Principal) HasAuthority(a string) bool {
	return slices.Contains(p.Authorities, a)
}

// HasAnyAuthority reports whether the principal holds at least one of as.
func (p Principal) HasAnyAuthority(as ...string) bool {
	for _, a := range as {
		if p.HasAuthority(a) {
			return true
		}
	}
	return false
}
