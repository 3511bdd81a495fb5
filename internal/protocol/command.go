package protocol

import (
	perr "piled/internal/errors"
)

// suspendSentinel is the fixed ToggleSuspend payload.  The controller
// treats it as an opaque marker; the client does not decode it.
var suspendSentinel = [MaxPayloadSize]byte{209, 0, 255, 3, 0}

// Command is an opcode with its encoded payload, ready to be framed.
type Command struct {
	Op      Opcode
	Payload []byte
}

// SetColor encodes [R, G, B, 0, 0].
func SetColor(c Color) Command {
	return Command{Op: OpSetColor, Payload: []byte{c.R, c.G, c.B, 0, 0}}
}

// Fade encodes [R, G, B, duration, speed].
func Fade(c Color, duration, speed int) (Command, error) {
	return animation(OpSetFadeAnimation, c, duration, speed)
}

// Pulse encodes [R, G, B, duration, speed].
func Pulse(c Color, duration, speed int) (Command, error) {
	return animation(OpSetPulseAnimation, c, duration, speed)
}

// ToggleSuspend encodes the opaque suspend marker.
func ToggleSuspend() Command {
	p := suspendSentinel
	return Command{Op: OpToggleSuspend, Payload: p[:]}
}

// GetCurrentColor has an empty payload.
func GetCurrentColor() Command {
	return Command{Op: OpGetCurrentColor, Payload: []byte{}}
}

func animation(op Opcode, c Color, duration, speed int) (Command, error) {
	d, err := byteArg("duration", duration)
	if err != nil {
		return Command{}, err
	}
	s, err := byteArg("speed", speed)
	if err != nil {
		return Command{}, err
	}
	return Command{Op: op, Payload: []byte{c.R, c.G, c.B, d, s}}, nil
}

// byteArg refuses values that would wrap when truncated to a byte.
func byteArg(field string, v int) (byte, error) {
	if v < 0 || v > 255 {
		return 0, &perr.RangeError{Field: field, Value: v, Min: 0, Max: 255}
	}
	return byte(v), nil
}
