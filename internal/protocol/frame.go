package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	perr "piled/internal/errors"
)

// Version is the protocol generation spoken by this client.
const Version uint8 = 4

// Layout constants.
const (
	HeaderSize     = 18
	TagSize        = 32
	MaxPayloadSize = 5
	MaxFrameSize   = HeaderSize + TagSize + MaxPayloadSize // 55

	offsetNonce   = 8
	offsetVersion = 16
	offsetOpcode  = 17
	offsetTag     = HeaderSize
	offsetPayload = HeaderSize + TagSize // 50
)

// Header is the unauthenticated prefix of every frame.
type Header struct {
	Timestamp int64
	Nonce     uint64
	Version   uint8
	Opcode    Opcode
}

// EncodeHeader lays h out as 18 bytes: timestamp, nonce, version,
// opcode.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint64(buf[0:offsetNonce], uint64(h.Timestamp))
	binary.BigEndian.PutUint64(buf[offsetNonce:offsetVersion], h.Nonce)
	buf[offsetVersion] = h.Version
	buf[offsetOpcode] = byte(h.Opcode)
	return buf
}

// DecodeHeader reads the first 18 bytes of raw.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, &perr.FrameError{Opcode: -1, Len: len(raw), Need: HeaderSize}
	}
	return Header{
		Timestamp: int64(binary.BigEndian.Uint64(raw[0:offsetNonce])),
		Nonce:     binary.BigEndian.Uint64(raw[offsetNonce:offsetVersion]),
		Version:   raw[offsetVersion],
		Opcode:    Opcode(raw[offsetOpcode]),
	}, nil
}

// Assemble concatenates header ‖ tag ‖ payload.
func Assemble(header, tag, payload []byte) []byte {
	out := make([]byte, 0, len(header)+len(tag)+len(payload))
	out = append(out, header...)
	out = append(out, tag...)
	return append(out, payload...)
}

// Frame is an outbound command before it is signed.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame stamps cmd with the current time and a fresh random nonce.
// Only client opcodes are accepted.
func NewFrame(cmd Command, now time.Time) (Frame, error) {
	if !cmd.Op.IsCommand() {
		return Frame{}, fmt.Errorf("%w: %s is not a client command", perr.ErrMalformedFrame, cmd.Op)
	}
	nonce, err := RandomNonce()
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Header: Header{
			Timestamp: now.Unix(),
			Nonce:     nonce,
			Version:   Version,
			Opcode:    cmd.Op,
		},
		Payload: cmd.Payload,
	}, nil
}

// Seal signs f with key and returns the bytes to put on the wire.  The
// tag is computed over exactly the header and payload being returned.
func (f Frame) Seal(key []byte) ([]byte, error) {
	header := EncodeHeader(f.Header)
	tag, err := Sign(key, header, f.Payload)
	if err != nil {
		return nil, err
	}
	return Assemble(header, tag, f.Payload), nil
}

// RandomNonce draws a nonce from crypto/rand.
func RandomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
