// Package tunnel reaches an LED controller that lives on a private
// network by forwarding the TCP stream through an SSH jump host,
// typically the Raspberry Pi or router sitting next to the strip.
// The LED protocol itself is unencrypted; the jump host only solves
// routing, and as a side effect protects the stream on the outer hop.
package tunnel

import (
	"context"
	"net"
)

// Tunnel forwards TCP connections through a gateway.
type Tunnel interface {
	// Connect establishes the gateway connection.
	Connect(ctx context.Context) error

	// Dial opens a connection to address through the gateway.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close tears down the gateway connection.
	Close() error

	// IsAlive reports whether the gateway connection is still up.
	IsAlive() bool
}
