// Package config defines the runtime configuration for piled and the
// key-value settings store the protocol client reads its credential
// from.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	perr "piled/internal/errors"
)

// Config holds every tuneable for one piled invocation.
type Config struct {
	// ── Controller ───────────────────────────────────────────────────
	Host            string
	Port            int
	Secret          string // shared secret; empty = not configured
	PromptSecret    bool   // read the secret from the terminal
	Timeout         time.Duration
	IdleTimeout     time.Duration // 0 = reads may block forever
	VerifyInbound   bool
	OptimisticColor bool

	// ── SSH jump host ────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Command ──────────────────────────────────────────────────────
	Command string   // first positional argument
	Args    []string // remaining positional arguments
	Wait    time.Duration

	// ── Watch ────────────────────────────────────────────────────────
	Reconnect     bool
	MaxReconnects int
	MetricsAddr   string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	DryRun  bool
}

// Commands lists the accepted first positional arguments.
var Commands = []string{"color", "fade", "pulse", "suspend", "get", "watch", "trigger"}

// KnownCommand reports whether name is one of Commands.
func KnownCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host and port from a jump-host spec
// such as "pi@gateway.home:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user, host, port = m[1], m[2], DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// A missing secret is not an error here: commands report it
// themselves so that "watch" can still observe pushes.
func (c *Config) Validate() error {
	if c.Command == "" {
		return &perr.ConfigError{
			Field:   "command",
			Message: "a command is required",
			Hint:    "one of: color, fade, pulse, suspend, get, watch, trigger",
		}
	}
	if !KnownCommand(c.Command) {
		return &perr.ConfigError{
			Field:   "command",
			Value:   c.Command,
			Message: "unknown command",
			Hint:    "one of: color, fade, pulse, suspend, get, watch, trigger",
		}
	}
	if c.Host == "" {
		return &perr.ConfigError{Field: "host", Message: "controller address is required"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &perr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("the controller listens on %d by default", DefaultPort),
		}
	}
	if c.Timeout < 0 || c.IdleTimeout < 0 || c.Wait < 0 {
		return &perr.ConfigError{Field: "timeout", Message: "durations must not be negative"}
	}
	if c.Secret != "" && c.PromptSecret {
		return &perr.ConfigError{
			Field:   "prompt-secret",
			Message: "--secret and --prompt-secret are mutually exclusive",
		}
	}
	if c.Reconnect && c.Command != "watch" {
		return &perr.ConfigError{
			Field:   "reconnect",
			Message: "only applies to the watch command",
			Hint:    "one-shot commands fail fast; wrap them in your own retry loop",
		}
	}
	if c.MaxReconnects < 0 {
		return &perr.ConfigError{Field: "max-reconnects", Value: c.MaxReconnects, Message: "must not be negative"}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &perr.ConfigError{Field: "tunnel", Message: "jump host is required"}
	}
	return nil
}
