// Package errors provides the error taxonomy of the LED protocol client.
//
// Sentinels name the condition a caller branches on (no credential, not
// connected, malformed frame, ...).  The structured types carry the
// context needed for diagnostics and always match their sentinel via
// errors.Is, so callers never have to type-switch.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected    = errors.New("not connected")
	ErrNoCredential    = errors.New("shared secret is not configured")
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrConnectionLost  = errors.New("connection lost")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrConnectAborted  = errors.New("connect aborted by disconnect")
	ErrTunnelClosed    = errors.New("tunnel is closed")
)

// ── Connect ──────────────────────────────────────────────────────────

// Reasons reported by ConnectError.
const (
	ReasonTimeout     = "timeout"
	ReasonRefused     = "refused"
	ReasonUnreachable = "unreachable"
	ReasonDNS         = "dns"
	ReasonFailed      = "failed"
)

// ConnectError is a failed connection attempt.  The session is back in
// the disconnected state when one of these is returned.
type ConnectError struct {
	Addr   string
	Reason string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %s: %v", e.Addr, e.Reason, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// WrapConnect builds a ConnectError and classifies the cause.
func WrapConnect(addr string, err error) *ConnectError {
	return &ConnectError{Addr: addr, Reason: connectReason(err), Err: err}
}

func connectReason(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &dnsErr):
		return ReasonDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonRefused
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return ReasonUnreachable
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonFailed
}

// ── Send ─────────────────────────────────────────────────────────────

// SendError is a failed frame write.  The connection is torn down
// before it is returned, so it always matches ErrConnectionLost.
type SendError struct {
	Addr string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("write %s: %v (connection lost)", e.Addr, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConnectionLost) hold.
func (e *SendError) Is(target error) bool { return target == ErrConnectionLost }

// ── Frames & values ──────────────────────────────────────────────────

// FrameError reports an inbound frame shorter than its opcode needs.
type FrameError struct {
	Opcode int // -1 when the header itself is truncated
	Len    int
	Need   int
}

func (e *FrameError) Error() string {
	if e.Opcode < 0 {
		return fmt.Sprintf("malformed frame: %d bytes, header needs %d", e.Len, e.Need)
	}
	return fmt.Sprintf("malformed frame: opcode %d needs %d bytes, got %d", e.Opcode, e.Need, e.Len)
}

// Is makes errors.Is(err, ErrMalformedFrame) hold.
func (e *FrameError) Is(target error) bool { return target == ErrMalformedFrame }

// RangeError reports a command argument that does not fit its byte.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%d out of range %d-%d", e.Field, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrValueOutOfRange) hold.
func (e *RangeError) Is(target error) bool { return target == ErrValueOutOfRange }

// ── Network / SSH ────────────────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // "dial", "read", "write", "listen"
	Addr      string
	Err       error
	Retryable bool
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents a jump-host failure with host context.
type SSHError struct {
	Op   string // "auth", "hostkey", "handshake", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ── Config ───────────────────────────────────────────────────────────

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // flag name without dashes
	Value   interface{} // nil if missing
	Message string
	Hint    string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, detecting retryability from err.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err, Retryable: classifyRetryable(err)}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification ───────────────────────────────────────────────────

// IsRetryable reports whether a reconnect attempt is worth making after
// err.  Missing credentials and bad configuration never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoCredential) {
		return false
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Reason != ReasonDNS
	}
	if errors.Is(err, ErrConnectionLost) {
		return true
	}
	return classifyRetryable(err)
}

func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // still the best hint available
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports ───────────────────────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
