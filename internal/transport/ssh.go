package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"piled/tunnel"
	"piled/util"
)

// SSHDialer reaches the controller through an SSH jump host.  The SSH
// connection is made on the first Dial and reused until it dies, so a
// reconnecting session does not repeat the SSH handshake every time.
type SSHDialer struct {
	tunnel tunnel.Tunnel
	logger *util.Logger
	mu     sync.Mutex
	up     bool
}

// NewSSHDialer creates a dialer that forwards through the jump host
// described by cfg.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{tunnel: tunnel.NewSSHTunnel(cfg, logger), logger: logger}
}

// newSSHDialerWith wraps an existing Tunnel.
func newSSHDialerWith(t tunnel.Tunnel, logger *util.Logger) *SSHDialer {
	return &SSHDialer{tunnel: t, logger: logger}
}

// ensure (re)establishes the jump-host connection.
func (d *SSHDialer) ensure(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.up && d.tunnel.IsAlive() {
		return nil
	}
	if d.up {
		d.logger.Verbose("jump host connection lost, redialing")
		d.tunnel.Close() //nolint:errcheck
		d.up = false
	}
	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("jump host: %w", err)
	}
	d.up = true
	return nil
}

// Dial forwards a connection to address through the jump host.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.ensure(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close tears down the jump-host connection.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.up {
		return nil
	}
	d.up = false
	return d.tunnel.Close()
}
