package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenauth/internal/auth"
	"tokenauth/internal/credential"
	"tokenauth/internal/events"
	"tokenauth/internal/logging"
	"tokenauth/internal/model"
	"tokenauth/internal/role"
)

// Outcome tells the caller which branch an operation took. Negative outcomes
// are normal results, not errors.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeDuplicateAccount   Outcome = "duplicate_account"
	OutcomeRejected           Outcome = "rejected"
	OutcomeUnknownAccount     Outcome = "unknown_account"
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeUnknownRole        Outcome = "unknown_role"
	OutcomeForbidden          Outcome = "forbidden"
)

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult is the outcome of Register. User is set on success.
type RegisterResult struct {
	Outcome Outcome
	Message string
	User    *model.User
}

// LoginRequest carries the credentials for token issuance.
type LoginRequest struct {
	Email    string
	Password string
}

// AuthResult is the outcome of Login. Token fields are empty unless
// Authenticated is true.
type AuthResult struct {
	Authenticated bool
	Outcome       Outcome
	Message       string
	UserID        string
	Username      string
	Email         string
	Roles         []string
	Token         string
	TokenID       string
	ExpiresAt     time.Time
}

// GrantRequest grants Role to the account identified by Email after
// confirming that account's Password.
type GrantRequest struct {
	Email    string
	Password string
	Role     string
}

// AssignRequest grants Role to the account identified by Email on behalf of
// an administrator.
type AssignRequest struct {
	Email string
	Role  string
}

// GrantResult is the outcome of GrantRole and AssignRole.
type GrantResult struct {
	Outcome Outcome
	Message string
	Role    role.Name
}

// AuthService handles registration, token issuance and role grants.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	GrantRole(ctx context.Context, req GrantRequest) (*GrantResult, error)
	AssignRole(ctx context.Context, actor *auth.Claims, req AssignRequest) (*GrantResult, error)
}

type authService struct {
	store       credential.Store
	signer      *auth.TokenSigner
	defaultRole role.Name
	events      events.Publisher
	logger      logging.Logger
}

// NewAuthService creates a new authentication service. publisher and logger
// may be nil.
func NewAuthService(store credential.Store, signer *auth.TokenSigner, defaultRole role.Name, publisher events.Publisher, logger logging.Logger) AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{
		store:       store,
		signer:      signer,
		defaultRole: defaultRole,
		events:      publisher,
		logger:      logger.With("component", "auth_service"),
	}
}

// Register creates the account together with the default role; either both
// are stored or neither is. The email check is advisory; the store's unique
// index settles concurrent registrations.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	existing, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return duplicateAccount(req.Email), nil
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.store.CreateUser(ctx, user, req.Password, s.defaultRole); err != nil {
		switch {
		case errors.Is(err, credential.ErrDuplicateEmail):
			return duplicateAccount(req.Email), nil
		case errors.Is(err, credential.ErrDuplicateUsername):
			return &RegisterResult{
				Outcome: OutcomeRejected,
				Message: fmt.Sprintf("Username %s is already taken.", req.Username),
			}, nil
		case errors.Is(err, credential.ErrPasswordRejected):
			return &RegisterResult{
				Outcome: OutcomeRejected,
				Message: "Password does not meet the requirements.",
			}, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID.String(), "role", string(s.defaultRole))
	s.publish(ctx, events.Event{
		Type:     events.TypeUserRegistered,
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     string(s.defaultRole),
	})

	return &RegisterResult{
		Outcome: OutcomeSuccess,
		Message: fmt.Sprintf("User registered %s.", user.Username),
		User:    user,
	}, nil
}

// Login verifies the credentials and issues a signed token carrying the
// user's identity, custom claims and current roles.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.store.DummyVerify(req.Password)
		s.logger.Info(ctx, "login rejected", "reason", OutcomeUnknownAccount)
		return &AuthResult{
			Outcome: OutcomeUnknownAccount,
			Message: fmt.Sprintf("No accounts registered with %s.", req.Email),
		}, nil
	}

	if !s.store.VerifyPassword(ctx, user, req.Password) {
		s.logger.Info(ctx, "login rejected", "reason", OutcomeInvalidCredentials, "user_id", user.ID.String())
		return &AuthResult{
			Outcome: OutcomeInvalidCredentials,
			Message: fmt.Sprintf("Incorrect credentials for user %s.", user.Email),
		}, nil
	}

	roles, err := s.store.Roles(ctx, user)
	if err != nil {
		return nil, err
	}
	custom, err := s.store.CustomClaims(ctx, user)
	if err != nil {
		return nil, err
	}

	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}
	extra := make([]auth.Claim, len(custom))
	for i, c := range custom {
		extra[i] = auth.Claim{Name: c.Type, Value: c.Value}
	}

	token, err := s.signer.Sign(auth.BuildClaimSet(user.Username, user.Email, user.ID.String(), extra, roleNames))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info(ctx, "token issued", "user_id", user.ID.String(), "jti", token.ID, "expires_at", token.ExpiresAt)

	return &AuthResult{
		Authenticated: true,
		Outcome:       OutcomeSuccess,
		Message:       "Authenticated.",
		UserID:        user.ID.String(),
		Username:      user.Username,
		Email:         user.Email,
		Roles:         roleNames,
		Token:         token.Value,
		TokenID:       token.ID,
		ExpiresAt:     token.ExpiresAt,
	}, nil
}

// GrantRole grants a role to the account after confirming that account's own
// password.
func (s *authService) GrantRole(ctx context.Context, req GrantRequest) (*GrantResult, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.store.DummyVerify(req.Password)
		return &GrantResult{
			Outcome: OutcomeUnknownAccount,
			Message: fmt.Sprintf("No accounts registered with %s.", req.Email),
		}, nil
	}
	if !s.store.VerifyPassword(ctx, user, req.Password) {
		return &GrantResult{
			Outcome: OutcomeInvalidCredentials,
			Message: fmt.Sprintf("Incorrect credentials for user %s.", user.Email),
		}, nil
	}
	return s.grant(ctx, user, req.Role, "")
}

// AssignRole grants a role on behalf of actor, who must hold Administrator in
// a verified token. The target account's password is not involved.
func (s *authService) AssignRole(ctx context.Context, actor *auth.Claims, req AssignRequest) (*GrantResult, error) {
	if !actor.HasRole(role.Administrator) {
		subject := ""
		if actor != nil {
			subject = actor.Subject
		}
		s.logger.Warn(ctx, "role assignment refused", "actor", subject)
		return &GrantResult{
			Outcome: OutcomeForbidden,
			Message: "Administrator role required.",
		}, nil
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &GrantResult{
			Outcome: OutcomeUnknownAccount,
			Message: fmt.Sprintf("No accounts registered with %s.", req.Email),
		}, nil
	}
	return s.grant(ctx, user, req.Role, actor.Subject)
}

func (s *authService) grant(ctx context.Context, user *model.User, requested, grantedBy string) (*GrantResult, error) {
	name, err := role.Parse(requested)
	if err != nil {
		return &GrantResult{
			Outcome: OutcomeUnknownRole,
			Message: fmt.Sprintf("Role %s not found.", requested),
		}, nil
	}

	if err := s.store.AddRole(ctx, user, name); err != nil {
		return nil, fmt.Errorf("add role: %w", err)
	}

	s.logger.Info(ctx, "role granted", "user_id", user.ID.String(), "role", string(name), "granted_by", grantedBy)
	s.publish(ctx, events.Event{
		Type:      events.TypeRoleGranted,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(name),
		GrantedBy: grantedBy,
	})

	return &GrantResult{
		Outcome: OutcomeSuccess,
		Message: fmt.Sprintf("Added %s to user %s.", name, user.Email),
		Role:    name,
	}, nil
}

// publish never fails the request; the account change is already committed.
func (s *authService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = time.Now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "event publish failed", "type", event.Type, "error", err)
	}
}

func duplicateAccount(email string) *RegisterResult {
	return &RegisterResult{
		Outcome: OutcomeDuplicateAccount,
		Message: fmt.Sprintf("Email %s is already registered.", email),
	}
}
