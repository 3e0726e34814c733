// Package role holds the closed set of role names users can be granted.
package role

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned when a name matches none of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Name is a canonical role name.
type Name string

const (
	Administrator Name = "Administrator"
	Moderator     Name = "Moderator"
	User          Name = "User"
)

var all = []Name{Administrator, Moderator, User}

// All returns every known role in provisioning order.
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all)
	return out
}

// Strings returns All as plain strings.
func Strings() []string {
	out := make([]string, len(all))
	for i, n := range all {
		out[i] = string(n)
	}
	return out
}

// Parse matches s against the known roles ignoring case and surrounding
// whitespace and returns the canonical name.
func Parse(s string) (Name, error) {
	s = strings.TrimSpace(s)
	for _, n := range all {
		if strings.EqualFold(string(n), s) {
			return n, nil
		}
	}
	return "", ErrUnknownRole
}

// Canonicalize is Parse under the name used by the credential store contract.
func Canonicalize(s string) (Name, error) {
	return Parse(s)
}

// IsValid reports whether s names a known role, ignoring case.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Valid reports whether n is exactly one of the canonical names.
func (n Name) Valid() bool {
	for _, r := range all {
		if r == n {
			return true
		}
	}
	return false
}

func (n Name) String() string {
	return string(n)
}
