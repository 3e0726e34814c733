package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim names written into every issued token.
const (
	ClaimSubject   = "sub"
	ClaimTokenID   = "jti"
	ClaimEmail     = "email"
	ClaimUserID    = "uid"
	ClaimRoles     = "roles"
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
	ClaimExpires   = "exp"
	ClaimIssued    = "iat"
	ClaimNotBefore = "nbf"
)

// reserved names cannot be supplied through custom user claims.
var reserved = map[string]bool{
	ClaimSubject:   true,
	ClaimTokenID:   true,
	ClaimEmail:     true,
	ClaimUserID:    true,
	ClaimRoles:     true,
	ClaimIssuer:    true,
	ClaimAudience:  true,
	ClaimExpires:   true,
	ClaimIssued:    true,
	ClaimNotBefore: true,
}

// IsReserved reports whether name is set by the signer itself.
func IsReserved(name string) bool {
	return reserved[name]
}

// Claim is a single name/value pair.
type Claim struct {
	Name  string
	Value string
}

// ClaimSet is an ordered collection of claims that may hold several values for
// one name. Adding a pair that is already present is a no-op.
type ClaimSet struct {
	claims []Claim
}

// Add appends the pair unless the exact pair is already present.
func (s *ClaimSet) Add(name, value string) {
	for _, c := range s.claims {
		if c.Name == name && c.Value == value {
			return
		}
	}
	s.claims = append(s.claims, Claim{Name: name, Value: value})
}

// Values returns the values recorded for name in insertion order.
func (s ClaimSet) Values(name string) []string {
	var out []string
	for _, c := range s.claims {
		if c.Name == name {
			out = append(out, c.Value)
		}
	}
	return out
}

// Value returns the first value recorded for name.
func (s ClaimSet) Value(name string) string {
	for _, c := range s.claims {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Names returns the distinct claim names in order of first appearance.
func (s ClaimSet) Names() []string {
	seen := make(map[string]bool, len(s.claims))
	var out []string
	for _, c := range s.claims {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c.Name)
		}
	}
	return out
}

// All returns a copy of every pair in insertion order.
func (s ClaimSet) All() []Claim {
	out := make([]Claim, len(s.claims))
	copy(out, s.claims)
	return out
}

// Len returns the number of pairs.
func (s ClaimSet) Len() int {
	return len(s.claims)
}

// MapClaims encodes the set as JWT claims. The roles claim is always an array;
// any other name is a string when it has one value and an array otherwise.
func (s ClaimSet) MapClaims() jwt.MapClaims {
	out := make(jwt.MapClaims, len(s.claims))
	for _, name := range s.Names() {
		values := s.Values(name)
		if len(values) == 1 && name != ClaimRoles {
			out[name] = values[0]
			continue
		}
		out[name] = values
	}
	return out
}

// BuildClaimSet assembles the claims for one issuance: subject, a fresh token
// id, email, user id, the user's custom claims and one roles entry per role.
// Custom claims using a reserved name are dropped.
func BuildClaimSet(username, email, userID string, custom []Claim, roles []string) ClaimSet {
	var s ClaimSet
	s.Add(ClaimSubject, username)
	s.Add(ClaimTokenID, uuid.NewString())
	s.Add(ClaimEmail, email)
	s.Add(ClaimUserID, userID)
	for _, c := range custom {
		if c.Name == "" || IsReserved(c.Name) {
			continue
		}
		s.Add(c.Name, c.Value)
	}
	for _, r := range roles {
		s.Add(ClaimRoles, r)
	}
	return s
}
