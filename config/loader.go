package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the PILED_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// Defaults returns a Config populated from defaults.go.
func Defaults() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		Timeout:       DefaultConnTimeout,
		Wait:          DefaultWaitColor,
		MaxReconnects: DefaultMaxReconnectAttempts,
	}
}

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it before flag parsing
// so flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PILED_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("PILED_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("PILED_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := envInt("PILED_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v := envInt("PILED_IDLE_TIMEOUT"); v > 0 {
		cfg.IdleTimeout = secondsDuration(v)
	}
	if envBool("PILED_VERIFY_INBOUND") {
		cfg.VerifyInbound = true
	}
	if envBool("PILED_OPTIMISTIC") {
		cfg.OptimisticColor = true
	}

	// SSH jump host
	if v := os.Getenv("PILED_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("PILED_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("PILED_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("PILED_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("PILED_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Watch
	if envBool("PILED_RECONNECT") {
		cfg.Reconnect = true
	}
	if v := os.Getenv("PILED_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	if v := envInt("PILED_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
