package main

import (
	"context"
	"fmt"
	"os"

	"tokenauth/internal/cache"
	"tokenauth/internal/config"
	"tokenauth/internal/credential"
	"tokenauth/internal/db"
	"tokenauth/internal/logging"
	"tokenauth/internal/model"
	"tokenauth/internal/repository"
	"tokenauth/internal/role"
)

func main() {
	cfg := config.Load()
	logger := logging.New("tokenauth-seed", os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SeedAdminPassword == "" {
		logger.Error(ctx, "SEED_ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}

	roleRepo := repository.NewRoleRepository(gormDB)
	if err := roleRepo.EnsureRoles(ctx, role.Strings()); err != nil {
		logger.Error(ctx, "failed to provision roles", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "roles provisioned", "roles", role.Strings())

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	store, err := credential.NewStore(repository.NewUserRepository(gormDB), roleRepo, cacheClient, credential.Options{
		BcryptCost:   cfg.BcryptCost,
		RoleCacheTTL: cfg.RoleCacheTTL(),
	})
	if err != nil {
		logger.Error(ctx, "credential store init", "error", err)
		os.Exit(1)
	}

	created, err := seedAdmin(ctx, store, adminAccount{
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
		Roles:    []role.Name{cfg.DefaultRoleName(), role.Administrator},
	})
	if err != nil {
		logger.Error(ctx, "failed to seed administrator", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "seed completed", "email", cfg.SeedAdminEmail, "created", created)
}

type adminAccount struct {
	Username string
	Email    string
	Password string
	Roles    []role.Name
}

// seedAdmin creates the administrator account when no account has its email
// and makes sure it holds every role in acct.Roles. A new account is stored
// together with acct.Roles[0]. It reports whether the account was created.
func seedAdmin(ctx context.Context, store credential.Store, acct adminAccount) (bool, error) {
	user, err := store.FindByEmail(ctx, acct.Email)
	if err != nil {
		return false, err
	}

	if len(acct.Roles) == 0 {
		return false, fmt.Errorf("administrator needs at least one role")
	}

	created := false
	if user == nil {
		user = &model.User{
			Username:  acct.Username,
			Email:     acct.Email,
			FirstName: "System",
			LastName:  "Administrator",
		}
		if err := store.CreateUser(ctx, user, acct.Password, acct.Roles[0]); err != nil {
			return false, fmt.Errorf("create administrator: %w", err)
		}
		created = true
	}

	grants := acct.Roles
	if created {
		grants = grants[1:]
	}
	for _, r := range grants {
		if err := store.AddRole(ctx, user, r); err != nil {
			return created, fmt.Errorf("grant %s: %w", r, err)
		}
	}
	return created, nil
}
