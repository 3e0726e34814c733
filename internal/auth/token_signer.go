package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tokenauth/internal/role"
)

var (
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("signing secret is not configured")
	// ErrInvalidSigningConfig is returned for an incomplete signing configuration.
	ErrInvalidSigningConfig = errors.New("invalid signing configuration")
	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid is returned for any other verification failure.
	ErrTokenInvalid = errors.New("token is invalid")
)

// SigningConfig is the process-wide token configuration. It is built once at
// startup and never modified afterwards.
type SigningConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Duration time.Duration
}

// Validate checks that every field needed to sign and verify is present.
func (c SigningConfig) Validate() error {
	if len(c.Secret) == 0 {
		return ErrMissingSecret
	}
	if c.Issuer == "" || c.Audience == "" {
		return fmt.Errorf("%w: issuer and audience are required", ErrInvalidSigningConfig)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidSigningConfig)
	}
	return nil
}

// Token is a signed, encoded token together with the values a caller usually
// needs without decoding it again.
type Token struct {
	Value     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	ID        string
	Email     string
	UserID    string
	Roles     []string
	Custom    map[string][]string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the token carries r.
func (c *Claims) HasRole(r role.Name) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Roles {
		if have == string(r) {
			return true
		}
	}
	return false
}

// TokenSigner signs claim sets with HS256 and verifies tokens it issued.
type TokenSigner struct {
	cfg    SigningConfig
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a TokenSigner.
type Option func(*TokenSigner)

// WithClock replaces time.Now as the source of the current time for both
// signing and verification.
func WithClock(now func() time.Time) Option {
	return func(s *TokenSigner) {
		s.now = now
	}
}

// NewTokenSigner creates a signer for cfg. The secret is copied so later
// changes to the caller's slice have no effect.
func NewTokenSigner(cfg SigningConfig, opts ...Option) (*TokenSigner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	s := &TokenSigner{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

// Duration returns the configured token lifetime.
func (s *TokenSigner) Duration() time.Duration {
	return s.cfg.Duration
}

// Sign binds issuer, audience, issued-at and expiry to the claim set and
// returns the signed token. The claim set must carry a token id.
func (s *TokenSigner) Sign(set ClaimSet) (Token, error) {
	id := set.Value(ClaimTokenID)
	if id == "" {
		return Token{}, fmt.Errorf("%w: claim set has no %s", ErrInvalidSigningConfig, ClaimTokenID)
	}

	now := s.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(s.cfg.Duration))

	claims := set.MapClaims()
	claims[ClaimIssuer] = s.cfg.Issuer
	claims[ClaimAudience] = s.cfg.Audience
	claims[ClaimIssued] = issuedAt
	claims[ClaimNotBefore] = issuedAt
	claims[ClaimExpires] = expiresAt

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		Value:     value,
		ID:        id,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry and returns
// the decoded claims.
func (s *TokenSigner) Verify(tokenString string) (*Claims, error) {
	mc := jwt.MapClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, mc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claimsFromMap(mc)
}

func claimsFromMap(mc jwt.MapClaims) (*Claims, error) {
	c := &Claims{Custom: map[string][]string{}}

	var err error
	if c.Subject, err = mc.GetSubject(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.Issuer, err = mc.GetIssuer(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	aud, err := mc.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c.Audience = aud
	if exp, _ := mc.GetExpirationTime(); exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, _ := mc.GetIssuedAt(); iat != nil {
		c.IssuedAt = iat.Time
	}

	for name, raw := range mc {
		values, ok := stringValues(raw)
		switch name {
		case ClaimTokenID:
			c.ID = first(values)
		case ClaimEmail:
			c.Email = first(values)
		case ClaimUserID:
			c.UserID = first(values)
		case ClaimRoles:
			if !ok {
				return nil, fmt.Errorf("%w: malformed %s claim", ErrTokenInvalid, ClaimRoles)
			}
			c.Roles = values
		default:
			if ok && !IsReserved(name) {
				c.Custom[name] = values
			}
		}
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrTokenInvalid, ClaimTokenID)
	}
	return c, nil
}

// stringValues accepts a JSON string or an array of strings.
func stringValues(raw interface{}) ([]string, bool) {
	switch v := raw.(type) {
	case string:
		return []string{v}, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
