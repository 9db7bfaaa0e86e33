package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-this-dev-secret"

// Config is built once at startup and handed to constructors. Nothing else reads the
// environment after Load returns.
type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string

	MongoURI      string
	MongoDatabase string
	RedisURI      string // empty disables the Redis-backed limiter

	JWTSecret       string
	JWTIssuer       string
	TokenTTL        time.Duration
	SuperAdminEmail string // lower-cased; registrations with this email become admins

	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	TrustProxy     bool     // key rate limits on X-Forwarded-For

	RateLimitMax    int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	StoreTimeout    time.Duration
	MaxBodyBytes    int64
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	mongoURI := getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://127.0.0.1:27017/feedback_portal_dev"))

	return &Config{
		Environment:     env,
		Port:            getEnv("PORT", "5000"),
		MongoURI:        mongoURI,
		MongoDatabase:   getEnv("MONGODB_DATABASE", databaseFromURI(mongoURI, "feedback_portal_dev")),
		RedisURI:        getEnv("REDIS_URI", ""),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:       getEnv("JWT_ISSUER", "feedback-portal"),
		TokenTTL:        getDuration("TOKEN_TTL", time.Hour),
		SuperAdminEmail: strings.ToLower(strings.TrimSpace(getEnv("SUPER_ADMIN_EMAIL", ""))),
		AllowedOrigins:  allowedOrigins,
		TrustProxy:      getEnv("TRUST_PROXY", "") == "true",
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 5*time.Second),
		MaxBodyBytes:    1 << 20,
	}
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// IsSuperAdmin reports whether email matches the configured super-admin address.
func (c *Config) IsSuperAdmin(email string) bool {
	if c.SuperAdminEmail == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(email)) == c.SuperAdminEmail
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// databaseFromURI extracts the path segment of mongodb://host/db?opts.
func databaseFromURI(uri, def string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i != -1 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i == -1 {
		return def
	}
	db := strings.Split(rest[i+1:], "?")[0]
	if db == "" {
		return def
	}
	return db
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}
