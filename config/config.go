package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "change-me-in-development"

// Config holds every setting the shop reads from the environment.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	LogFile  string

	JWTSecret string
	JWTTTL    time.Duration

	UserStore  string // "file" or "mongo"
	UserDBFile string
	MongoURI   string
	MongoDB    string

	EmailProvider  string // "none", "postmark" or "sendgrid"
	PostmarkToken  string
	SendGridAPIKey string
	EmailSender    string

	SeedCatalog       bool
	StrictOrderStatus bool

	// UsingDevJWTSecret is set when JWT_SECRET was empty and the built-in
	// development secret is in use.
	UsingDevJWTSecret bool
}

// Load reads .env files (when present) and then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := Config{
		Port:     getEnv("PORT", "8000"),
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		UserStore:  strings.ToLower(getEnv("USER_STORE", "file")),
		UserDBFile: getEnv("USER_DB_FILE", "database.txt"),
		MongoURI:   getEnv("MONGO_URI", ""),
		MongoDB:    getEnv("MONGO_DB", "ecommerce"),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "none")),
		PostmarkToken:  getEnv("POSTMARK_API_TOKEN", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", ""),

		SeedCatalog:       getEnvBool("SEED_CATALOG", true),
		StrictOrderStatus: getEnvBool("ORDER_STRICT_STATUS", false),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
		cfg.UsingDevJWTSecret = true
	}
	return cfg, nil
}

// Validate rejects settings that cannot work together.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT required")
	}
	switch c.UserStore {
	case "file":
		if c.UserDBFile == "" {
			return fmt.Errorf("USER_DB_FILE required for the file user store")
		}
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI required for the mongo user store")
		}
	default:
		return fmt.Errorf("unknown USER_STORE %q (want file or mongo)", c.UserStore)
	}
	switch c.EmailProvider {
	case "none":
	case "postmark":
		if c.PostmarkToken == "" {
			return fmt.Errorf("POSTMARK_API_TOKEN required for the postmark provider")
		}
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.EmailProvider != "none" && c.EmailSender == "" {
		return fmt.Errorf("EMAIL_SENDER required when email is enabled")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET required in production")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production environment.
func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
