package errors

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestConnectError_Reason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, ReasonTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "led.invalid"}, ReasonDNS},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, ReasonRefused},
		{"unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}, ReasonUnreachable},
		{"other", fmt.Errorf("boom"), ReasonFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := WrapConnect("192.168.0.4:3384", tt.err)
			if ce.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", ce.Reason, tt.want)
			}
			if !Is(ce, tt.err) {
				t.Error("should unwrap to the cause")
			}
		})
	}
}

func TestConnectError_Format(t *testing.T) {
	err := &ConnectError{Addr: "10.0.0.5:3384", Reason: ReasonRefused, Err: fmt.Errorf("connection refused")}
	want := "connect 10.0.0.5:3384: refused: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSendError_MatchesConnectionLost(t *testing.T) {
	err := fmt.Errorf("set color: %w", &SendError{Addr: "x", Err: io.ErrClosedPipe})
	if !Is(err, ErrConnectionLost) {
		t.Error("SendError should match ErrConnectionLost")
	}
	if !Is(err, io.ErrClosedPipe) {
		t.Error("SendError should unwrap to its cause")
	}
}

func TestFrameError(t *testing.T) {
	err := &FrameError{Opcode: 5, Len: 40, Need: 53}
	if !Is(err, ErrMalformedFrame) {
		t.Error("FrameError should match ErrMalformedFrame")
	}
	if got, want := err.Error(), "malformed frame: opcode 5 needs 53 bytes, got 40"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	short := &FrameError{Opcode: -1, Len: 4, Need: 18}
	if got, want := short.Error(), "malformed frame: 4 bytes, header needs 18"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRangeError(t *testing.T) {
	err := &RangeError{Field: "speed", Value: 300, Min: 0, Max: 255}
	if !Is(err, ErrValueOutOfRange) {
		t.Error("RangeError should match ErrValueOutOfRange")
	}
	if got, want := err.Error(), "speed=300 out of range 0-255"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "led.local:3384", Err: io.EOF, Retryable: true},
			want: "dial led.local:3384: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "read", Addr: "led.local:3384", Err: fmt.Errorf("reset")},
			want: "read led.local:3384: reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "the controller listens on 3384 by default",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: the controller listens on 3384 by default",
		},
		{
			name: "missing value no hint",
			err:  ConfigError{Field: "host", Message: "required"},
			want: "config: --host: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no credential", fmt.Errorf("get: %w", ErrNoCredential), false},
		{"config", &ConfigError{Field: "port"}, false},
		{"connection lost", &SendError{Addr: "x", Err: io.EOF}, true},
		{"refused", &ConnectError{Reason: ReasonRefused, Err: io.EOF}, true},
		{"dns", &ConnectError{Reason: ReasonDNS, Err: io.EOF}, false},
		{"retryable network", &NetworkError{Op: "dial", Err: io.EOF, Retryable: true}, true},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrNotConnected, ErrNoCredential, ErrMalformedFrame, ErrValueOutOfRange,
		ErrConnectionLost, ErrAuthFailed, ErrConnectAborted, ErrTunnelClosed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
