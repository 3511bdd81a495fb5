// Package transport provides the ways a session can reach the LED
// controller: a direct TCP dial, or a TCP stream forwarded through an
// SSH jump host when the controller sits on a LAN the client cannot
// route to.  Transports only open byte streams; framing and
// authentication happen above them.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections to the controller.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases long-lived resources held by the dialer, such as
	// an SSH client.  Stateless dialers return nil.
	Close() error
}
