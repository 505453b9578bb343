// Package daemon wires configuration, storage and services into the
// watchearn HTTP daemon.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/watchearn-network/watchearn/internal/api"
	"github.com/watchearn-network/watchearn/internal/infra/logging"
)

// Environment overrides.
const (
	EnvHome      = "WATCHEARN_HOME"
	EnvJWTSecret = "WATCHEARN_JWT_SECRET"
)

// Config is the on-disk daemon configuration (config.toml).
type Config struct {
	API       APIConfig       `toml:"api"`
	Database  DatabaseConfig  `toml:"database"`
	Ledger    LedgerConfig    `toml:"ledger"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Log       logging.Config  `toml:"log"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RequestTimeout string `toml:"request_timeout"`
	Metrics        bool   `toml:"metrics"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Dir string `toml:"dir"` // empty = home directory
}

// LedgerConfig holds money policy and contention limits.
type LedgerConfig struct {
	MinWithdrawal int64  `toml:"min_withdrawal"`
	LockTimeout   string `toml:"lock_timeout"`
	SeedDefaults  bool   `toml:"seed_defaults"` // seed the built-in ads into an empty catalog
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
	TokenTTL  string `toml:"token_ttl"`
}

// RateLimitConfig bounds mutating requests per caller.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8420,
			RequestTimeout: "30s",
			Metrics:        true,
		},
		Ledger: LedgerConfig{
			MinWithdrawal: 500,
			LockTimeout:   "2s",
			SeedDefaults:  true,
		},
		Auth: AuthConfig{
			Issuer:   "watchearn",
			TokenTTL: "24h",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Log: logging.DefaultConfig(),
	}
}

// HomeDir returns $WATCHEARN_HOME or ~/.watchearn.
func HomeDir() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".watchearn")
}

// ConfigPath returns the default config file location under home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.toml")
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults. Environment overrides are applied last.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
			}
		}
	}
	if secret := os.Getenv(EnvJWTSecret); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Ledger.MinWithdrawal <= 0 {
		return fmt.Errorf("ledger.min_withdrawal must be positive")
	}
	for name, v := range map[string]string{
		"api.request_timeout": c.API.RequestTimeout,
		"ledger.lock_timeout": c.Ledger.LockTimeout,
		"auth.token_ttl":      c.Auth.TokenTTL,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit requires positive requests_per_second and burst")
	}
	return nil
}

// Addr returns host:port for the listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// DataDir returns the database directory, defaulting to home.
func (c Config) DataDir(home string) string {
	if c.Database.Dir != "" {
		return c.Database.Dir
	}
	return home
}

// LockTimeout parses ledger.lock_timeout. Validate has already run.
func (c Config) LockTimeout() time.Duration {
	return parseDuration(c.Ledger.LockTimeout, 2*time.Second)
}

// RequestTimeout parses api.request_timeout.
func (c Config) RequestTimeout() time.Duration {
	return parseDuration(c.API.RequestTimeout, 30*time.Second)
}

// TokenTTL parses auth.token_ttl.
func (c Config) TokenTTL() time.Duration {
	return parseDuration(c.Auth.TokenTTL, 24*time.Hour)
}

// TokenAuth returns the bearer token verifier for the configured secret.
func (c Config) TokenAuth() (*api.TokenAuth, error) {
	if c.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is not set (config or %s)", EnvJWTSecret)
	}
	return api.NewTokenAuth(c.Auth.JWTSecret, c.Auth.Issuer)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
