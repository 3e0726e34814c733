// Package credential implements the credential store: user lookup, password
// hashing and verification, role membership and custom claims.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tokenauth/internal/cache"
	"tokenauth/internal/model"
	"tokenauth/internal/repository"
	"tokenauth/internal/role"
)

var (
	// ErrStoreUnavailable wraps any infrastructure failure of the store.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrPasswordRejected is returned when the password cannot be hashed.
	ErrPasswordRejected = errors.New("password rejected")
	// ErrRoleNotProvisioned is returned when a valid role has no row yet.
	ErrRoleNotProvisioned = errors.New("role not provisioned")
)

// Store is the contract the authentication service depends on.
type Store interface {
	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	VerifyPassword(ctx context.Context, user *model.User, plaintext string) bool
	// DummyVerify costs the same as a failed VerifyPassword. Callers use it
	// when there is no user so both negative paths take similar time.
	DummyVerify(plaintext string)
	// CreateUser stores the user together with its initial role; on error
	// nothing is persisted.
	CreateUser(ctx context.Context, user *model.User, plaintext string, initial role.Name) error
	Roles(ctx context.Context, user *model.User) ([]role.Name, error)
	AddRole(ctx context.Context, user *model.User, name role.Name) error
	CustomClaims(ctx context.Context, user *model.User) ([]model.UserClaim, error)
}

// Options tune the store.
type Options struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// RoleCacheTTL of zero disables role caching.
	RoleCacheTTL time.Duration
}

type store struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	cache     *cache.Client
	cost      int
	roleTTL   time.Duration
	dummyHash []byte
}

var _ Store = (*store)(nil)

// NewStore builds a Store over the repositories. cache may be nil.
func NewStore(users repository.UserRepository, roles repository.RoleRepository, c *cache.Client, opts Options) (Store, error) {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &store{
		users:     users,
		roles:     roles,
		cache:     c,
		cost:      cost,
		roleTTL:   opts.RoleCacheTTL,
		dummyHash: dummy,
	}, nil
}

// rolesKey embeds the user's role version, which every grant bumps in the
// same transaction as the membership row. Entries written for an older
// version are never read again, whatever order concurrent logins and grants
// commit in.
func (s *store) rolesKey(user *model.User) string {
	return fmt.Sprintf("user_roles:%s:%d", user.ID, user.RoleVersion)
}

func (s *store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, unavailable("find user by email", err)
	}
	return user, nil
}

func (s *store) VerifyPassword(_ context.Context, user *model.User, plaintext string) bool {
	if user == nil || user.PasswordHash == "" {
		s.DummyVerify(plaintext)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

func (s *store) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(plaintext))
}

// CreateUser hashes plaintext into user.PasswordHash and inserts the user with
// its initial role in one transaction. The unique indexes on email and
// username decide races between concurrent registrations.
func (s *store) CreateUser(ctx context.Context, user *model.User, plaintext string, initial role.Name) error {
	if plaintext == "" {
		return fmt.Errorf("%w: password is empty", ErrPasswordRejected)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", ErrPasswordRejected, err)
		}
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.CreateWithRole(ctx, user, string(initial)); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return s.duplicateReason(ctx, user.Email)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("%w: %s", ErrRoleNotProvisioned, initial)
		}
		return unavailable("create user", err)
	}
	return nil
}

// duplicateReason tells a duplicate email from a duplicate username after the
// insert hit a unique index.
func (s *store) duplicateReason(ctx context.Context, email string) error {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

// Roles returns the roles held at user.RoleVersion, served from Redis when
// cached. user must be freshly loaded for the result to be current.
func (s *store) Roles(ctx context.Context, user *model.User) ([]role.Name, error) {
	key := s.rolesKey(user)
	var cached []role.Name
	if s.roleTTL > 0 && s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.users.Roles(ctx, user.ID)
	if err != nil {
		return nil, unavailable("load roles", err)
	}
	names := make([]role.Name, 0, len(rows))
	for _, r := range rows {
		name, err := role.Parse(r.Name)
		if err != nil {
			// rows outside the closed set are not granted through this service
			continue
		}
		names = append(names, name)
	}

	if s.roleTTL > 0 {
		s.cache.SetJSON(ctx, key, names, s.roleTTL)
	}
	return names, nil
}

// AddRole grants name to the user and bumps its role version. Granting a held
// role leaves the membership unchanged.
func (s *store) AddRole(ctx context.Context, user *model.User, name role.Name) error {
	row, err := s.roles.FindByName(ctx, string(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleNotProvisioned, name)
		}
		return unavailable("find role", err)
	}
	if err := s.users.AddRole(ctx, user.ID, row.ID); err != nil {
		return unavailable("add role", err)
	}
	return nil
}

func (s *store) CustomClaims(ctx context.Context, user *model.User) ([]model.UserClaim, error) {
	claims, err := s.users.Claims(ctx, user.ID)
	if err != nil {
		return nil, unavailable("load claims", err)
	}
	return claims, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
