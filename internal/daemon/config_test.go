package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8420)
	}
	if cfg.Ledger.MinWithdrawal != 500 {
		t.Errorf("Ledger.MinWithdrawal = %d, want %d", cfg.Ledger.MinWithdrawal, 500)
	}
	if cfg.LockTimeout() != 2*time.Second {
		t.Errorf("LockTimeout() = %v, want 2s", cfg.LockTimeout())
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should be true by default")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:8420" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[api]
port = 9000

[ledger]
min_withdrawal = 1000
lock_timeout = "500ms"

[auth]
jwt_secret = "file-secret-0123456789"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, default should survive", cfg.API.Host)
	}
	if cfg.Ledger.MinWithdrawal != 1000 {
		t.Errorf("MinWithdrawal = %d, want 1000", cfg.Ledger.MinWithdrawal)
	}
	if cfg.LockTimeout() != 500*time.Millisecond {
		t.Errorf("LockTimeout() = %v, want 500ms", cfg.LockTimeout())
	}
	if cfg.Auth.JWTSecret != "file-secret-0123456789" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadConfig_EnvSecretWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[auth]\njwt_secret = \"from-file-0123456789\"\n"), 0o600)
	t.Setenv(EnvJWTSecret, "from-env-0123456789")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.JWTSecret != "from-env-0123456789" {
		t.Errorf("JWTSecret = %q, want env value", cfg.Auth.JWTSecret)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown key", "[api]\nbogus = 1\n", "unknown keys"},
		{"bad port", "[api]\nport = 70000\n", "api.port"},
		{"bad duration", "[ledger]\nlock_timeout = \"soon\"\n", "ledger.lock_timeout"},
		{"zero minimum", "[ledger]\nmin_withdrawal = 0\n", "min_withdrawal"},
		{"bad ratelimit", "[ratelimit]\nburst = 0\n", "ratelimit"},
		{"syntax", "[api\n", "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(tt.data), 0o600)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestHomeDir_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	if got := HomeDir(); got != dir {
		t.Errorf("HomeDir() = %q, want %q", got, dir)
	}
	if got := ConfigPath(dir); got != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"5m", 5 * time.Minute},
		{"250ms", 250 * time.Millisecond},
		{"", time.Second},   // Default
		{"-3s", time.Second}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseDuration(tt.input, time.Second); got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
