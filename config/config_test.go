package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "LOG_FILE", "JWT_SECRET", "JWT_TTL",
	"USER_STORE", "USER_DB_FILE", "MONGO_URI", "MONGO_DB",
	"EMAIL_PROVIDER", "POSTMARK_API_TOKEN", "SENDGRID_API_KEY", "EMAIL_SENDER",
	"SEED_CATALOG", "ORDER_STRICT_STATUS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "file", cfg.UserStore)
	assert.Equal(t, "database.txt", cfg.UserDBFile)
	assert.Equal(t, "ecommerce", cfg.MongoDB)
	assert.Equal(t, "none", cfg.EmailProvider)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.UsingDevJWTSecret)
	assert.True(t, cfg.SeedCatalog)
	assert.False(t, cfg.StrictOrderStatus)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PORT=9090\nUSER_STORE=Mongo\nMONGO_URI=mongodb://localhost:27017\nJWT_TTL=30m\nORDER_STRICT_STATUS=true\nSEED_CATALOG=false\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mongo", cfg.UserStore)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.StrictOrderStatus)
	assert.False(t, cfg.SeedCatalog)
}

func TestLoad_ExplicitJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.UsingDevJWTSecret)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "8000", AppEnv: "dev", UserStore: "file", UserDBFile: "db.txt", EmailProvider: "none"}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"unknown store":       func(c *Config) { c.UserStore = "redis" },
		"mongo without uri":   func(c *Config) { c.UserStore = "mongo" },
		"unknown provider":    func(c *Config) { c.EmailProvider = "pigeon" },
		"postmark no token":   func(c *Config) { c.EmailProvider = "postmark"; c.EmailSender = "shop@x" },
		"sendgrid no key":     func(c *Config) { c.EmailProvider = "sendgrid"; c.EmailSender = "shop@x" },
		"email without from":  func(c *Config) { c.EmailProvider = "postmark"; c.PostmarkToken = "t" },
		"prod without secret": func(c *Config) { c.AppEnv = "production" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
