package util

import (
	"fmt"
	"io"
	"net"
	"testing"
	"time"
)

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"192.168.0.4", 3384, "192.168.0.4:3384"},
		{"::1", 3384, "[::1]:3384"},
		{"led.local", 80, "led.local:80"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestIsClosedConn(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), true},
		{"net closed", net.ErrClosed, true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"other", fmt.Errorf("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosedConn(tt.err); got != tt.want {
				t.Errorf("IsClosedConn(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsClosedConn_RealSocket(t *testing.T) {
	a, b := net.Pipe()
	b.Close()
	a.Close()
	_, err := a.Read(make([]byte, 1))
	if !IsClosedConn(err) {
		t.Errorf("read on closed pipe: %v should count as closed", err)
	}
}

func TestIsTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	a.SetReadDeadline(time.Now().Add(10 * time.Millisecond)) //nolint:errcheck
	_, err := a.Read(make([]byte, 1))
	if !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
	if IsTimeout(io.EOF) {
		t.Error("EOF is not a timeout")
	}
}
