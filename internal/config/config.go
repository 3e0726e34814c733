package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"

	"tokenauth/internal/auth"
	"tokenauth/internal/role"
)

// MinSecretLength is the shortest accepted HS256 signing secret in bytes.
const MinSecretLength = 32

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	RabbitMQURL string
	SwaggerHost string
	LogLevel    string

	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	JWTDurationMinutes int

	DefaultRole         string
	BcryptCost          int
	RoleCacheTTLSeconds int

	SeedAdminUsername string
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load builds Config from environment with sensible defaults. Values from a
// .env file in the working directory are applied first when the file exists;
// variables already present in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/tokenauth?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "tokenauth"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "tokenauth-clients"),
		JWTDurationMinutes: getEnvInt("JWT_DURATION_MINUTES", 60),

		DefaultRole:         getEnv("DEFAULT_ROLE", string(role.User)),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),
		RoleCacheTTLSeconds: getEnvInt("ROLE_CACHE_TTL_SECONDS", 300),

		SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
}

// Validate reports configuration that must stop the process at startup.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required),
		validation.Field(&c.MySQLDSN, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(MinSecretLength, 0)),
		validation.Field(&c.JWTIssuer, validation.Required),
		validation.Field(&c.JWTAudience, validation.Required),
		validation.Field(&c.JWTDurationMinutes, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultRole, validation.Required, validation.By(knownRole)),
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(4), validation.Max(31)),
		validation.Field(&c.RoleCacheTTLSeconds, validation.Min(0)),
	)
}

// Signing returns the immutable signing configuration shared by the token
// signer and the access gate.
func (c *Config) Signing() auth.SigningConfig {
	return auth.SigningConfig{
		Secret:   []byte(c.JWTSecret),
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
		Duration: time.Duration(c.JWTDurationMinutes) * time.Minute,
	}
}

// DefaultRoleName returns the role granted to every newly registered user.
// Validate must have succeeded before calling it.
func (c *Config) DefaultRoleName() role.Name {
	name, _ := role.Parse(c.DefaultRole)
	return name
}

// RoleCacheTTL returns how long role memberships may be served from Redis.
func (c *Config) RoleCacheTTL() time.Duration {
	return time.Duration(c.RoleCacheTTLSeconds) * time.Second
}

func knownRole(value interface{}) error {
	s, _ := value.(string)
	if _, err := role.Parse(s); err != nil {
		return errors.New("must be one of " + strings.Join(role.Strings(), ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
