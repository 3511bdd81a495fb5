package config

import (
	"testing"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "pi@gateway.home:2222", "pi", "gateway.home", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Command: "get", Host: "192.168.0.4", Port: 3384}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid get", func(*Config) {}, false},
		{"valid watch reconnect", func(c *Config) { c.Command = "watch"; c.Reconnect = true }, false},
		{"missing secret is fine", func(c *Config) { c.Secret = "" }, false},
		{"no command", func(c *Config) { c.Command = "" }, true},
		{"unknown command", func(c *Config) { c.Command = "blink" }, true},
		{"no host", func(c *Config) { c.Host = "" }, true},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too big", func(c *Config) { c.Port = 70000 }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, true},
		{"secret and prompt", func(c *Config) { c.Secret = "s"; c.PromptSecret = true }, true},
		{"reconnect outside watch", func(c *Config) { c.Reconnect = true }, true},
		{"negative reconnects", func(c *Config) { c.MaxReconnects = -1 }, true},
		{"tunnel without host", func(c *Config) { c.TunnelEnabled = true }, true},
		{"tunnel ok", func(c *Config) { c.TunnelEnabled = true; c.TunnelHost = "gw" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestKnownCommand(t *testing.T) {
	for _, c := range Commands {
		if !KnownCommand(c) {
			t.Errorf("%q should be known", c)
		}
	}
	if KnownCommand("reboot") {
		t.Error("reboot should not be known")
	}
}
