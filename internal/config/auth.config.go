package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"auth-service/pkg/jwtutil"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// AppConfig is loaded once at process start and passed by reference; nothing
// mutates it afterwards.
type AppConfig struct {
	HTTPAddr string
	Env      string // "production" hides internal error detail

	MongoURI string
	MongoDB  string

	RedisAddr string // empty selects the in-process cache fallback
	RedisPass string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecret string

	Google GoogleConfig

	CORSOrigins  []string
	KafkaBrokers []string // empty disables the auth event producer
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8001"),
		Env:      getEnv("ENV", "development"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "auth"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		CookieSecret: getEnv("COOKIE_SECRET", ""),

		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},

		CORSOrigins:  getEnvSlice("CORS_ORIGIN", nil),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", nil),
	}
}

// Validate rejects a configuration the process must not start with. Missing
// or undersized secrets are fatal here, never deferred to request time.
func (c AppConfig) Validate() error {
	if len(c.JWTSecret) < jwtutil.MinSecretLen {
		return fmt.Errorf("JWT_SECRET must be set and at least %d bytes", jwtutil.MinSecretLen)
	}
	if len(c.CookieSecret) < 32 {
		return fmt.Errorf("COOKIE_SECRET must be set and at least 32 bytes")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must be set")
	}
	if c.Google.ClientID != "" || c.Google.ClientSecret != "" || c.Google.RedirectURI != "" {
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.RedirectURI == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI must all be set for OAuth login")
		}
	}
	if c.Production() && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGIN must be set in production")
	}
	return nil
}

func (c AppConfig) Production() bool {
	return c.Env == "production"
}

// OAuthEnabled reports whether the Google routes should be mounted.
func (c AppConfig) OAuthEnabled() bool {
	return c.Google.ClientID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
