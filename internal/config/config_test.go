package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `
server:
  scheme: https
  authority: fpa.example.com
  port: 8443
database:
  server: db.internal
  port: 5432
  username: fpa
  password: secret
  name: fpa
  schema: fpa
  timeout_connect: 3s
auth:
  jwks:
    - https://idp.example.com/certs
  audience: fpa-management
logging:
  level: debug
  format: text
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8443 {
		t.Errorf("port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Server.BaseURL() != "https://fpa.example.com:8443" {
		t.Errorf("base url = %s", cfg.Server.BaseURL())
	}
	if cfg.Database.TimeoutConnect != 3*time.Second {
		t.Errorf("timeout_connect = %s, want 3s", cfg.Database.TimeoutConnect)
	}
	// Defaults survive a partial document.
	if cfg.Database.ConnectionsMax != 10 {
		t.Errorf("connections_max = %d, want default 10", cfg.Database.ConnectionsMax)
	}
	if cfg.Auth.Audience != "fpa-management" {
		t.Errorf("audience = %s", cfg.Auth.Audience)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadPasswordOverride(t *testing.T) {
	t.Setenv("FPA_DATABASE_PASSWORD", "from-env")
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("password = %q, want from-env", cfg.Database.Password)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("defaults without jwks endpoints should not validate")
	}
	cfg.Auth.JWKS = []string{"https://idp.example.com/certs"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	dsn := cfg.Database.DSN()
	for _, part := range []string{"postgres://", "fpa:secret@db.internal:5432", "search_path=fpa", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}

	cfg.Database.SSLMode = "verify-full"
	if dsn := cfg.Database.DSN(); !strings.Contains(dsn, "sslmode=verify-full") {
		t.Errorf("dsn %q missing sslmode=verify-full", dsn)
	}
}
