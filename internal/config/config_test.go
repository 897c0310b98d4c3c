package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT",
	"CORS_ORIGINS", "ADMIN_EMAIL", "ADMIN_PASSWORD", "API_URL", "API_TOKEN", "BANNER_TTL",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "./data/compplan.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.BannerTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Error(t, cfg.ValidateServer(), "no JWT secret")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"PORT=7070",
		"JWT_SECRET=" + strings.Repeat("s", MinSecretLength),
		"TOKEN_TTL=2h",
		"BANNER_TTL=5",
		"CORS_ORIGINS=https://admin.example.com, http://localhost:5173",
		"API_URL=https://api.example.com/",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port, "environment wins over .env")
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.BannerTTL)
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.NoError(t, cfg.ValidateServer())
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "eighty"},
		{"TOKEN_TTL", "a day"},
		{"BANNER_TTL", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidateServer(t *testing.T) {
	base := Config{Port: 8080, JWTSecret: strings.Repeat("k", MinSecretLength)}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
		{name: "admin without password", mutate: func(c *Config) { c.AdminEmail = "admin@example.com" }, wantErr: "ADMIN_EMAIL"},
		{name: "admin pair", mutate: func(c *Config) { c.AdminEmail, c.AdminPassword = "admin@example.com", "pw" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.ValidateServer()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
