package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PROXY_SECRET", testSecret)
	t.Setenv("HELO_HOSTNAME", "verify.example.net")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != "3001" {
		t.Errorf("expected port 3001, got %s", cfg.ServerPort)
	}
	if cfg.MaxBatchSize != 50 {
		t.Errorf("expected max batch 50, got %d", cfg.MaxBatchSize)
	}
	if cfg.RateLimit.Max != 20 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.BanThreshold != 10 || cfg.RateLimit.BanDuration != time.Hour {
		t.Errorf("unexpected ban defaults: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.SweepInterval != 5*time.Minute {
		t.Errorf("expected 5m sweep, got %s", cfg.RateLimit.SweepInterval)
	}
	if cfg.SMTP.Timeout != 10*time.Second || cfg.SMTP.InterProbeDelay != 500*time.Millisecond {
		t.Errorf("unexpected smtp defaults: %+v", cfg.SMTP)
	}
	if cfg.SMTP.Port != "25" {
		t.Errorf("expected smtp port 25, got %s", cfg.SMTP.Port)
	}
	if cfg.SMTP.HeloHostname != "verify.example.net" {
		t.Errorf("unexpected helo hostname %s", cfg.SMTP.HeloHostname)
	}
	if len(cfg.AllowedIPs) != 0 {
		t.Errorf("expected empty allowlist, got %v", cfg.AllowedIPs)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PROXY_SECRET", testSecret)
	t.Setenv("ALLOWED_IPS", " 10.0.0.1, ,10.0.0.2 ")
	t.Setenv("MAX_BATCH_SIZE", "10")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("AUTH_BAN_THRESHOLD", "3")
	t.Setenv("SMTP_TIMEOUT_MS", "250")
	t.Setenv("INTER_PROBE_DELAY_MS", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(cfg.AllowedIPs, "|") != "10.0.0.1|10.0.0.2" {
		t.Errorf("unexpected allowlist %v", cfg.AllowedIPs)
	}
	if cfg.MaxBatchSize != 10 || cfg.RateLimit.Max != 5 || cfg.RateLimit.BanThreshold != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.SMTP.Timeout != 250*time.Millisecond || cfg.SMTP.InterProbeDelay != 0 {
		t.Errorf("unexpected smtp config: %+v", cfg.SMTP)
	}
}

func TestLoadConfig_SecretRequired(t *testing.T) {
	testCases := []struct {
		name   string
		secret string
	}{
		{"missing", ""},
		{"too short", "short-secret"},
		{"one under minimum", testSecret[:31]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PROXY_SECRET", tc.secret)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for secret %q", tc.secret)
			}
		})
	}
}

func TestLoadConfig_InvalidIntegerFallsBack(t *testing.T) {
	t.Setenv("PROXY_SECRET", testSecret)
	t.Setenv("RATE_LIMIT_MAX", "lots")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.Max != 20 {
		t.Errorf("expected fallback 20, got %d", cfg.RateLimit.Max)
	}
}

func TestValidate_RejectsNonPositive(t *testing.T) {
	t.Setenv("PROXY_SECRET", testSecret)
	t.Setenv("MAX_BATCH_SIZE", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}
