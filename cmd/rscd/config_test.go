package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/rscwire/internal/server"
	"github.com/danmuck/rscwire/internal/testutil/testlog"
)

func TestLoadServerConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadServerConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defaults := server.DefaultConfig()

	if cfg.ListenAddr != "127.0.0.1:43594" || cfg.HTTPAddr != "127.0.0.1:43595" {
		t.Fatalf("unexpected addresses: %q %q", cfg.ListenAddr, cfg.HTTPAddr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://play.example.org" {
		t.Fatalf("unexpected origins: %+v", cfg.AllowedOrigins)
	}
	if cfg.MetricsToken != "change-me" {
		t.Fatalf("unexpected metrics token: %q", cfg.MetricsToken)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.ShutdownTimeout)
	}
	if cfg.World.Index != 1 || cfg.World.PlaneWidth != 2304 || cfg.World.PlaneMultiplier != 944 {
		t.Fatalf("unexpected world: %+v", cfg.World)
	}
	if cfg.Session.OutboxSize != 128 || cfg.Session.ReadTimeout != 90*time.Second {
		t.Fatalf("unexpected session overrides: %+v", cfg.Session)
	}
	if cfg.Session.WriteTimeout != defaults.Session.WriteTimeout {
		t.Fatalf("write timeout should keep default: %v", cfg.Session.WriteTimeout)
	}
	if cfg.Session.ReadChunkSize != defaults.Session.ReadChunkSize {
		t.Fatalf("read chunk size should keep default: %d", cfg.Session.ReadChunkSize)
	}
	if cfg.AcceptBackoff.InitialDelay != 10*time.Millisecond || cfg.AcceptBackoff.MaxDelay != 2*time.Second {
		t.Fatalf("unexpected backoff: %+v", cfg.AcceptBackoff)
	}
	if cfg.AcceptBackoff.Multiplier != defaults.AcceptBackoff.Multiplier {
		t.Fatalf("backoff multiplier should keep default: %v", cfg.AcceptBackoff.Multiplier)
	}
}

func TestLoadServerConfigEmptyFileKeepsDefaults(t *testing.T) {
	testlog.Start(t)

	path := writeConfig(t, "")
	cfg, err := loadServerConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defaults := server.DefaultConfig()
	if cfg.ListenAddr != defaults.ListenAddr || cfg.Session != defaults.Session || cfg.World != defaults.World {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadServerConfigRejectsBadValues(t *testing.T) {
	testlog.Start(t)

	cases := map[string]string{
		"bad duration":  "shutdown_timeout = \"soon\"\n",
		"bad nested":    "[session]\nread_timeout = \"10 parsecs\"\n",
		"unknown key":   "listen_port = 43594\n",
		"invalid limit": "[session]\nbuffer_size = 0\n",
		"syntax":        "listen_addr = \n",
	}
	for name, body := range cases {
		if _, err := loadServerConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rscd.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
