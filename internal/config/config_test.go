package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8003 {
		t.Errorf("expected Port=8003, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 15 {
		t.Errorf("expected WriteTimeoutSec=15, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Upstream.TimeoutSec != 10 {
		t.Errorf("expected Upstream.TimeoutSec=10, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Upstream.UserAgent == "" {
		t.Error("expected a default user agent")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9000, ReadTimeoutSec: 5},
		Upstream: UpstreamConfig{TimeoutSec: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Upstream.TimeoutSec != 3 {
		t.Errorf("expected Upstream.TimeoutSec=3, got %d", cfg.Upstream.TimeoutSec)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 70000},
		Upstream: UpstreamConfig{BaseURL: "https://api.example.com/usage"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8003}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing upstream.base_url")
	}
}

func TestValidate_BaseURLScheme(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8003},
		Upstream: UpstreamConfig{BaseURL: "ftp://api.example.com"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http base_url scheme")
	}

	cfg.Upstream.BaseURL = "https://api.example.com/usage"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for https base_url: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("KEYMETER_TEST_PORT", "9090")

	in := []byte("port: ${KEYMETER_TEST_PORT}\nurl: ${KEYMETER_TEST_MISSING:-https://fallback}")
	out := string(expandEnvVars(in))

	expected := "port: 9090\nurl: https://fallback"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: ${KEYMETER_TEST_LOAD_PORT:-8003}
upstream:
  base_url: https://api.example.com/usage
  timeout_sec: 5
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 8003 {
		t.Errorf("expected port 8003, got %d", cfg.HTTP.Port)
	}
	if cfg.Upstream.BaseURL != "https://api.example.com/usage" {
		t.Errorf("unexpected base_url: %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.TimeoutSec != 5 {
		t.Errorf("expected timeout_sec 5, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("expected default env local, got %q", env)
	}

	t.Setenv("ENV", "prod")
	if env := GetEnv(); env != "prod" {
		t.Errorf("expected prod, got %q", env)
	}
}
