package transport

import (
	"context"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections.
type TCPDialer struct {
	// Timeout bounds the connect; 0 leaves it to ctx.
	Timeout time.Duration
	// KeepAlive is the TCP keep-alive period; 0 uses the OS default,
	// negative disables it.
	KeepAlive time.Duration
}

// Dial connects to address over TCP.  Whichever of Timeout and the
// ctx deadline expires first ends the attempt.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	dialer := net.Dialer{KeepAlive: d.KeepAlive}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// Frames are tiny; don't let Nagle hold them back.
		tc.SetNoDelay(true) //nolint:errcheck
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
