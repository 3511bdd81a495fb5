package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so CLI flags, environment loading
// and the settings store agree on them.

const (
	// DefaultHost is the controller address applied on first run.
	DefaultHost = "192.168.0.4"

	// DefaultPort is the controller's TCP port.
	DefaultPort = 3384

	// DefaultConnTimeout bounds the initial TCP connect.
	DefaultConnTimeout = 5 * time.Second

	// DefaultSSHPort is the standard SSH port for jump hosts.
	DefaultSSHPort = 22

	// DefaultSSHKeepAlive is the jump-host keepalive interval.
	DefaultSSHKeepAlive = 30 * time.Second

	// DefaultWaitColor is how long "get" waits for the controller to
	// answer GetCurrentColor.
	DefaultWaitColor = 3 * time.Second

	// DefaultMaxReconnectAttempts bounds watch-mode reconnects.
	DefaultMaxReconnectAttempts = 10

	// DefaultMaxReconnectBackoff caps the delay between reconnects.
	DefaultMaxReconnectBackoff = 60 * time.Second
)
