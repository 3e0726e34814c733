package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSet_AddIgnoresDuplicatePairs(t *testing.T) {
	var s ClaimSet
	s.Add(ClaimRoles, "User")
	s.Add(ClaimRoles, "Moderator")
	s.Add(ClaimRoles, "User")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"User", "Moderator"}, s.Values(ClaimRoles))
}

func TestBuildClaimSet_Order(t *testing.T) {
	s := BuildClaimSet("alice", "alice@example.com", "uid-1",
		[]Claim{
			{Name: "department", Value: "ops"},
			{Name: "department", Value: "billing"},
			{Name: ClaimEmail, Value: "spoofed@example.com"},
			{Name: ClaimRoles, Value: "Administrator"},
			{Name: "", Value: "ignored"},
		},
		[]string{"User"})

	assert.Equal(t, []string{ClaimSubject, ClaimTokenID, ClaimEmail, ClaimUserID, "department", ClaimRoles}, s.Names())
	assert.Equal(t, "alice", s.Value(ClaimSubject))
	assert.Equal(t, []string{"alice@example.com"}, s.Values(ClaimEmail))
	assert.Equal(t, []string{"ops", "billing"}, s.Values("department"))
	assert.Equal(t, []string{"User"}, s.Values(ClaimRoles))

	_, err := uuid.Parse(s.Value(ClaimTokenID))
	require.NoError(t, err)
}

func TestBuildClaimSet_FreshTokenID(t *testing.T) {
	a := BuildClaimSet("alice", "alice@example.com", "uid-1", nil, nil)
	b := BuildClaimSet("alice", "alice@example.com", "uid-1", nil, nil)

	assert.NotEqual(t, a.Value(ClaimTokenID), b.Value(ClaimTokenID))
}

func TestClaimSet_MapClaims(t *testing.T) {
	var s ClaimSet
	s.Add(ClaimSubject, "alice")
	s.Add("department", "ops")
	s.Add("department", "billing")
	s.Add(ClaimRoles, "User")

	assert.Equal(t, jwt.MapClaims{
		ClaimSubject: "alice",
		"department": []string{"ops", "billing"},
		ClaimRoles:   []string{"User"},
	}, s.MapClaims())
}

func TestClaimSet_AllReturnsCopy(t *testing.T) {
	var s ClaimSet
	s.Add(ClaimSubject, "alice")

	all := s.All()
	all[0].Value = "mallory"

	assert.Equal(t, "alice", s.Value(ClaimSubject))
}

func TestIsReserved(t *testing.T) {
	for _, name := range []string{"sub", "jti", "email", "uid", "roles", "iss", "aud", "exp", "iat", "nbf"} {
		assert.True(t, IsReserved(name), name)
	}
	assert.False(t, IsReserved("department"))
}
