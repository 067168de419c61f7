//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("vip:\n  admin_code: ADMIN-1\n"), true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.Port != 8080 || cfg.HTTP.UpgradePath != "/settings/upgrade" {
		t.Errorf("http defaults: %+v", cfg.HTTP)
	}
	if cfg.VIP.Store != StoreMemory || cfg.VIP.Window != 30*24*time.Hour {
		t.Errorf("vip defaults: %+v", cfg.VIP)
	}
	if cfg.Auth.CookieName != "betiq_session" || cfg.Auth.SessionSecret == "" {
		t.Errorf("auth defaults: %+v", cfg.Auth)
	}
	if cfg.AI.MaxRetries != 2 || cfg.Scheduler.Workers != 4 {
		t.Errorf("ai/scheduler defaults: retries=%d workers=%d", cfg.AI.MaxRetries, cfg.Scheduler.Workers)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not propagated")
	}
}

func TestParse_Overrides(t *testing.T) {
	yml := `
http:
  port: 9090
vip:
  admin_code: ADMIN-1
  store: " Redis "
  codes: [BETIQ-AAAA-BBBB]
redis:
  url: localhost:6379
  ttl: 2h
auth:
  session_secret: s3cret
football:
  leagues: [61, 39]
ai:
  max_retries: -1
`
	cfg, err := Parse([]byte(yml), false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.VIP.Store != StoreRedis || cfg.Redis.TTL != 2*time.Hour {
		t.Errorf("overrides not applied: %+v %+v", cfg.HTTP, cfg.VIP)
	}
	if len(cfg.Football.Leagues) != 2 || len(cfg.VIP.Codes) != 1 {
		t.Errorf("lists not parsed: %+v", cfg.Football.Leagues)
	}
	if cfg.AI.MaxRetries != 0 {
		t.Errorf("negative retries should clamp to 0, got %d", cfg.AI.MaxRetries)
	}
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]struct {
		yml  string
		dev  bool
		want string
	}{
		"missing admin code":     {"auth:\n  session_secret: x\n", false, "admin_code"},
		"missing session secret": {"vip:\n  admin_code: A\n", false, "session_secret"},
		"redis without url":      {"vip:\n  admin_code: A\n  store: redis\n", true, "redis.url"},
		"postgres without url":   {"vip:\n  admin_code: A\n  store: postgres\n", true, "database.url"},
		"codes from db, no url":  {"vip:\n  admin_code: A\n  load_codes_from_db: true\n", true, "database.url"},
		"unknown store":          {"vip:\n  admin_code: A\n  store: etcd\n", true, "vip.store"},
		"bad yaml":               {"vip: [", true, "parse config"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(c.yml), c.dev)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("err = %v, want it to mention %q", err, c.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("vip:\n  admin_code: A\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, true); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
