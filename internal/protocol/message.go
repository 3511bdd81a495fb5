package protocol

import (
	perr "piled/internal/errors"
)

// Inbound is a received frame split along its structural offsets.
// Slices alias the buffer handed to ParseInbound.
type Inbound struct {
	Header    Header
	RawHeader []byte
	Tag       []byte // may be short or empty on truncated frames
	Payload   []byte // everything from offset 50 on
}

// ParseInbound splits raw into header, tag and payload region.  Only
// the header is required; opcode-specific length checks happen in
// Message.
func ParseInbound(raw []byte) (*Inbound, error) {
	h, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	in := &Inbound{Header: h, RawHeader: raw[:HeaderSize]}
	switch {
	case len(raw) >= offsetPayload:
		in.Tag = raw[offsetTag:offsetPayload]
		in.Payload = raw[offsetPayload:]
	default:
		in.Tag = raw[offsetTag:]
	}
	return in, nil
}

// Message is a decoded inbound frame.  Each opcode the client
// understands has its own variant; everything else is Unhandled.
type Message interface {
	Opcode() Opcode
}

// ColorChanged is pushed by the controller whenever its color changes,
// and in answer to GetCurrentColor.
type ColorChanged struct {
	Color Color
}

// Opcode implements Message.
func (ColorChanged) Opcode() Opcode { return OpColorChangedPush }

// Unhandled carries an opcode the client has no handling for.
type Unhandled struct {
	Op      Opcode
	Payload []byte
}

// Opcode implements Message.
func (u Unhandled) Opcode() Opcode { return u.Op }

// Message decodes the variant selected by the header opcode.
func (in *Inbound) Message() (Message, error) {
	switch in.Header.Opcode {
	case OpColorChangedPush:
		const need = offsetPayload + 3
		if len(in.Payload) < 3 {
			return nil, &perr.FrameError{
				Opcode: int(OpColorChangedPush),
				Len:    in.len(),
				Need:   need,
			}
		}
		return ColorChanged{Color: Color{R: in.Payload[0], G: in.Payload[1], B: in.Payload[2]}}, nil
	default:
		return Unhandled{Op: in.Header.Opcode, Payload: in.Payload}, nil
	}
}

func (in *Inbound) len() int {
	return len(in.RawHeader) + len(in.Tag) + len(in.Payload)
}

// Decode parses raw and decodes its message in one step.
func Decode(raw []byte) (*Inbound, Message, error) {
	in, err := ParseInbound(raw)
	if err != nil {
		return nil, nil, err
	}
	msg, err := in.Message()
	if err != nil {
		return in, nil, err
	}
	return in, msg, nil
}
