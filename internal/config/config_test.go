package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		old, had := os.LookupEnv(k)
		os.Setenv(k, v)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	withEnv(t, map[string]string{"PROJECT_DIR": t.TempDir()})
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.MaxConnections != 100 {
		t.Fatalf("expected default max connections 100, got %d", cfg.MaxConnections)
	}
}

func TestLoadRejectsZeroPort(t *testing.T) {
	withEnv(t, map[string]string{"PROJECT_DIR": t.TempDir(), "PORT": "0"})
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for PORT=0")
	}
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	withEnv(t, map[string]string{"PROJECT_DIR": t.TempDir(), "PORT": "65536"})
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for PORT=65536")
	}
}

func TestLoadRejectsNonIntegerPort(t *testing.T) {
	withEnv(t, map[string]string{"PROJECT_DIR": t.TempDir(), "PORT": "abc"})
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-integer PORT")
	}
}

func TestLoadRequiresProjectDir(t *testing.T) {
	os.Unsetenv("PROJECT_DIR")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error when PROJECT_DIR is unset")
	}
}

func TestLoadComposesMultipleViolations(t *testing.T) {
	os.Unsetenv("PROJECT_DIR")
	withEnv(t, map[string]string{"PORT": "0", "MAX_CONNECTIONS": "-1"})
	_, err := Load("")
	if err == nil {
		t.Fatal("expected composed error")
	}
	msg := err.Error()
	for _, want := range []string{"PORT", "PROJECT_DIR", "MAX_CONNECTIONS"} {
		if !contains(msg, want) {
			t.Fatalf("expected composed error to mention %q, got: %s", want, msg)
		}
	}
}

func TestAllowedOriginsFromEnv(t *testing.T) {
	withEnv(t, map[string]string{"PROJECT_DIR": t.TempDir(), "ALLOWED_ORIGINS": "https://a.example, https://b.example"})
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
