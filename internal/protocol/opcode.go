// Package protocol implements the wire format of the LED controller:
// the fixed 18-byte header, the HMAC-SHA256 authentication tag, the
// per-operation payload layouts and the decoding of inbound frames.
//
// Frame layout (all integers big-endian):
//
//	offset 0..7   timestamp (int64, unix seconds)
//	offset 8..15  nonce (random)
//	offset 16     protocol version (= Version)
//	offset 17     opcode
//	offset 18..49 auth tag, HMAC-SHA256(secret, bytes[0..17] ‖ payload)
//	offset 50..   payload (0–5 bytes)
//
// Frames carry no length prefix.  A reader relies on the fixed
// maximum frame size and the structural offsets above.
//
// Everything in this package is pure: nothing here touches a socket.
package protocol

import "fmt"

// Opcode selects the operation carried by a frame.
type Opcode uint8

const (
	OpSetColor          Opcode = 0
	OpGetCurrentColor   Opcode = 1
	OpSetFadeAnimation  Opcode = 2
	OpSetPulseAnimation Opcode = 3
	OpToggleSuspend     Opcode = 4
	OpColorChangedPush  Opcode = 5 // server → client only
)

func (o Opcode) String() string {
	switch o {
	case OpSetColor:
		return "SetColor"
	case OpGetCurrentColor:
		return "GetCurrentColor"
	case OpSetFadeAnimation:
		return "SetFadeAnimation"
	case OpSetPulseAnimation:
		return "SetPulseAnimation"
	case OpToggleSuspend:
		return "ToggleSuspend"
	case OpColorChangedPush:
		return "ColorChangedPush"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(o))
	}
}

// IsCommand reports whether o may be sent by a client.
func (o Opcode) IsCommand() bool {
	return o <= OpToggleSuspend
}
