package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenauth/internal/role"
)

var testConfig = SigningConfig{
	Secret:   []byte("test-secret-test-secret-test-secret"),
	Issuer:   "tokenauth-test",
	Audience: "tokenauth-test-clients",
	Duration: 30 * time.Minute,
}

// fixedClock returns a clock reading t that tests can move.
func fixedClock(t time.Time) (*time.Time, func() time.Time) {
	now := t
	return &now, func() time.Time { return now }
}

func newSigner(t *testing.T, cfg SigningConfig, now func() time.Time) *TokenSigner {
	t.Helper()
	s, err := NewTokenSigner(cfg, WithClock(now))
	require.NoError(t, err)
	return s
}

func TestSigningConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SigningConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*SigningConfig) {}},
		{name: "missing secret", mutate: func(c *SigningConfig) { c.Secret = nil }, wantErr: ErrMissingSecret},
		{name: "missing issuer", mutate: func(c *SigningConfig) { c.Issuer = "" }, wantErr: ErrInvalidSigningConfig},
		{name: "missing audience", mutate: func(c *SigningConfig) { c.Audience = "" }, wantErr: ErrInvalidSigningConfig},
		{name: "zero duration", mutate: func(c *SigningConfig) { c.Duration = 0 }, wantErr: ErrInvalidSigningConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig
			tt.mutate(&cfg)

			_, err := NewTokenSigner(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTokenSigner_SignAndVerify(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, clock := fixedClock(issued)
	signer := newSigner(t, testConfig, clock)

	set := BuildClaimSet("alice", "alice@example.com", "5f1c7c6e-1d2f-4a39-9a65-3f4a5e3b2c10",
		[]Claim{{Name: "department", Value: "ops"}},
		[]string{"User", "Moderator"})

	token, err := signer.Sign(set)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, set.Value(ClaimTokenID), token.ID)
	assert.Equal(t, issued, token.IssuedAt)
	assert.Equal(t, issued.Add(30*time.Minute), token.ExpiresAt)

	claims, err := signer.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "5f1c7c6e-1d2f-4a39-9a65-3f4a5e3b2c10", claims.UserID)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, []string{"User", "Moderator"}, claims.Roles)
	assert.Equal(t, map[string][]string{"department": {"ops"}}, claims.Custom)
	assert.Equal(t, "tokenauth-test", claims.Issuer)
	assert.Equal(t, []string{"tokenauth-test-clients"}, claims.Audience)
	assert.Equal(t, token.ExpiresAt, claims.ExpiresAt.UTC())
	assert.True(t, claims.HasRole(role.Moderator))
	assert.False(t, claims.HasRole(role.Administrator))
}

func TestTokenSigner_ExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, clock := fixedClock(issued)
	signer := newSigner(t, testConfig, clock)

	token, err := signer.Sign(BuildClaimSet("alice", "alice@example.com", "uid-1", nil, []string{"User"}))
	require.NoError(t, err)

	*now = token.ExpiresAt.Add(-time.Second)
	_, err = signer.Verify(token.Value)
	assert.NoError(t, err, "token must be valid one second before expiry")

	*now = token.ExpiresAt.Add(time.Second)
	_, err = signer.Verify(token.Value)
	assert.ErrorIs(t, err, ErrTokenExpired, "token must be rejected one second after expiry")
}

func TestTokenSigner_Verify_Rejects(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, clock := fixedClock(issued)
	signer := newSigner(t, testConfig, clock)

	token, err := signer.Sign(BuildClaimSet("alice", "alice@example.com", "uid-1", nil, []string{"User"}))
	require.NoError(t, err)

	otherSecret := testConfig
	otherSecret.Secret = []byte("another-secret-another-secret-123")
	otherIssuer := testConfig
	otherIssuer.Issuer = "someone-else"
	otherAudience := testConfig
	otherAudience.Audience = "other-clients"

	tests := []struct {
		name   string
		signer *TokenSigner
		token  string
	}{
		{name: "wrong secret", signer: newSigner(t, otherSecret, clock), token: token.Value},
		{name: "wrong issuer", signer: newSigner(t, otherIssuer, clock), token: token.Value},
		{name: "wrong audience", signer: newSigner(t, otherAudience, clock), token: token.Value},
		{name: "garbage", signer: signer, token: "not-a-token"},
		{name: "tampered", signer: signer, token: token.Value + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.signer.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenSigner_Verify_RejectsOtherAlgorithms(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, clock := fixedClock(issued)
	signer := newSigner(t, testConfig, clock)

	claims := BuildClaimSet("alice", "alice@example.com", "uid-1", nil, nil).MapClaims()
	claims[ClaimIssuer] = testConfig.Issuer
	claims[ClaimAudience] = testConfig.Audience
	claims[ClaimExpires] = jwt.NewNumericDate(issued.Add(time.Hour))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testConfig.Secret)
	require.NoError(t, err)
	_, err = signer.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = signer.Verify(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSigner_Verify_RequiresExpiry(t *testing.T) {
	_, clock := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	signer := newSigner(t, testConfig, clock)

	claims := BuildClaimSet("alice", "alice@example.com", "uid-1", nil, nil).MapClaims()
	claims[ClaimIssuer] = testConfig.Issuer
	claims[ClaimAudience] = testConfig.Audience

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testConfig.Secret)
	require.NoError(t, err)

	_, err = signer.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSigner_Sign_RequiresTokenID(t *testing.T) {
	signer := newSigner(t, testConfig, time.Now)

	var set ClaimSet
	set.Add(ClaimSubject, "alice")

	_, err := signer.Sign(set)
	assert.ErrorIs(t, err, ErrInvalidSigningConfig)
}

func TestTokenSigner_CopiesSecret(t *testing.T) {
	cfg := testConfig
	cfg.Secret = []byte("mutable-secret-mutable-secret-123")
	signer := newSigner(t, cfg, time.Now)

	token, err := signer.Sign(BuildClaimSet("alice", "alice@example.com", "uid-1", nil, nil))
	require.NoError(t, err)

	cfg.Secret[0] = 'X'
	_, err = signer.Verify(token.Value)
	assert.NoError(t, err)
}

func TestTokenSigner_RepeatedIssuanceDiffers(t *testing.T) {
	_, clock := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	signer := newSigner(t, testConfig, clock)

	a, err := signer.Sign(BuildClaimSet("alice", "alice@example.com", "uid-1", nil, []string{"User"}))
	require.NoError(t, err)
	b, err := signer.Sign(BuildClaimSet("alice", "alice@example.com", "uid-1", nil, []string{"User"}))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Value, b.Value)
}
