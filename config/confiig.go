package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const minSecretLength = 32

type RateLimitConfig struct {
	Max           int           `json:"max"`
	Window        time.Duration `json:"window"`
	BanThreshold  int           `json:"ban_threshold"`
	BanDuration   time.Duration `json:"ban_duration"`
	SweepInterval time.Duration `json:"sweep_interval"`
}

type SMTPConfig struct {
	Timeout         time.Duration `json:"timeout"`
	Port            string        `json:"port"`
	HeloHostname    string        `json:"helo_hostname"`
	InterProbeDelay time.Duration `json:"inter_probe_delay"`
}

type DNSConfig struct {
	Server  string        `json:"server"`
	Timeout time.Duration `json:"timeout"`
}

type Config struct {
	Environment  string          `json:"environment"`
	ServerPort   string          `json:"server_port"`
	Secret       string          `json:"-"`
	AllowedIPs   []string        `json:"allowed_ips"`
	ProxyHeader  string          `json:"proxy_header"`
	MaxBatchSize int             `json:"max_batch_size"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
	SMTP         SMTPConfig      `json:"smtp"`
	DNS          DNSConfig       `json:"dns"`
	SentryDSN    string          `json:"-"`
	LogLevel     string          `json:"log_level"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates it. Any error is fatal for the caller.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		ServerPort:   getEnv("PORT", "3001"),
		Secret:       getEnv("PROXY_SECRET", ""),
		AllowedIPs:   getEnvAsList("ALLOWED_IPS"),
		ProxyHeader:  getEnv("PROXY_HEADER", ""),
		MaxBatchSize: getEnvAsInt("MAX_BATCH_SIZE", 50),
		RateLimit: RateLimitConfig{
			Max:           getEnvAsInt("RATE_LIMIT_MAX", 20),
			Window:        getEnvAsSeconds("RATE_LIMIT_WINDOW_SECONDS", 60),
			BanThreshold:  getEnvAsInt("AUTH_BAN_THRESHOLD", 10),
			BanDuration:   getEnvAsSeconds("BAN_DURATION_SECONDS", 3600),
			SweepInterval: getEnvAsSeconds("SWEEP_INTERVAL_SECONDS", 300),
		},
		SMTP: SMTPConfig{
			Timeout:         getEnvAsMillis("SMTP_TIMEOUT_MS", 10000),
			Port:            getEnv("SMTP_PORT", "25"),
			HeloHostname:    getEnv("HELO_HOSTNAME", ""),
			InterProbeDelay: getEnvAsMillis("INTER_PROBE_DELAY_MS", 500),
		},
		DNS: DNSConfig{
			Server:  getEnv("DNS_SERVER", ""),
			Timeout: getEnvAsMillis("DNS_TIMEOUT_MS", 5000),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	if cfg.SMTP.HeloHostname == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "localhost"
		}
		cfg.SMTP.HeloHostname = hostname
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logConfig(cfg)
	return cfg, nil
}

// Validate checks that required configuration fields are set and valid
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("PROXY_SECRET is required")
	}
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("PROXY_SECRET must be at least %d characters", minSecretLength)
	}
	if c.MaxBatchSize <= 0 {
		return errors.New("MAX_BATCH_SIZE must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if c.RateLimit.BanThreshold <= 0 || c.RateLimit.BanDuration <= 0 {
		return errors.New("AUTH_BAN_THRESHOLD and BAN_DURATION_SECONDS must be positive")
	}
	if c.RateLimit.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.SMTP.Timeout <= 0 {
		return errors.New("SMTP_TIMEOUT_MS must be positive")
	}
	if c.SMTP.InterProbeDelay < 0 {
		return errors.New("INTER_PROBE_DELAY_MS must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using default %d", valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func logConfig(c *Config) {
	logrus.WithFields(logrus.Fields{
		"environment":    c.Environment,
		"port":           c.ServerPort,
		"allowed_ips":    len(c.AllowedIPs),
		"max_batch_size": c.MaxBatchSize,
		"rate_limit_max": c.RateLimit.Max,
		"ban_threshold":  c.RateLimit.BanThreshold,
		"smtp_timeout":   c.SMTP.Timeout.String(),
		"helo_hostname":  c.SMTP.HeloHostname,
		"dns_server":     c.DNS.Server,
		"sentry":         c.SentryDSN != "",
	}).Info("🔧 Loaded configuration")
}
