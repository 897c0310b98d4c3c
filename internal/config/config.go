// Package config reads server and CLI settings from the environment. A .env
// file in the working directory, when present, is loaded first; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest JWT secret the server accepts.
const MinSecretLength = 32

// Config holds every setting of the server and the rsadmin CLI.
type Config struct {
	// Server
	Port          int
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	AdminEmail    string
	AdminPassword string

	LogLevel  string
	LogFormat string

	// CLI
	APIURL    string
	APIToken  string
	BannerTTL time.Duration
}

// Load reads .env files (default ".env") and then the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error

	port, err := getInt("PORT", 8080)
	errs = append(errs, err)
	tokenTTL, err := getDuration("TOKEN_TTL", 24*time.Hour)
	errs = append(errs, err)
	bannerTTL, err := getDuration("BANNER_TTL", 3*time.Second)
	errs = append(errs, err)

	cfg := &Config{
		Port:          port,
		DBPath:        getEnv("DB_PATH", "./data/compplan.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      tokenTTL,
		CORSOrigins:   getList("CORS_ORIGINS", []string{"*"}),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		APIURL:        strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		APIToken:      os.Getenv("API_TOKEN"),
		BannerTTL:     bannerTTL,
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateServer checks the settings only the server needs.
func (c *Config) ValidateServer() error {
	var errs []error
	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLength))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getDuration accepts Go durations ("90s") and bare seconds ("90").
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
