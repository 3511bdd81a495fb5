package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(3)
	l.SetOutput(&buf)
	l.SetTimestamps(false)

	l.Error("e")
	l.Warn("w")
	l.Info("i")
	l.Verbose("v")
	l.Debug("d")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), output)
	}

	wantPrefixes := []string{"[ERR]", "[WRN]", "[INF]", "[VRB]", "[DBG]"}
	for i, prefix := range wantPrefixes {
		if !strings.Contains(lines[i], prefix) {
			t.Errorf("line %d %q missing prefix %q", i, lines[i], prefix)
		}
	}
}

func TestLogger_QuietMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(0)
	l.SetOutput(&buf)
	l.SetTimestamps(false)

	l.Info("should not appear")
	l.Verbose("should not appear")
	l.Debug("should not appear")
	l.Error("always appears")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected 1 line in quiet mode, got %d:\n%s", len(lines), buf.String())
	}
}

func TestLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)
	l.SetTimestamps(true)

	l.Info("test")

	// Timestamp format is "HH:MM:SS.mmm"
	if out := buf.String(); !strings.Contains(out, ":") || len(out) < 15 {
		t.Errorf("expected timestamp prefix, got %q", out)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)
	l.SetTimestamps(false)

	child := l.Named("session").Named("1a2b3c4d")
	child.Info("connected")

	if got, want := strings.TrimSpace(buf.String()), "[INF] session/1a2b3c4d: connected"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Children share the parent's sink.
	buf.Reset()
	var other bytes.Buffer
	l.SetOutput(&other)
	child.Warn("moved")
	if buf.Len() != 0 || !strings.Contains(other.String(), "moved") {
		t.Errorf("child did not follow parent output change")
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.Info("x")
	l.Error("x")
	if l.Named("y") != nil {
		t.Error("Named on nil should return nil")
	}
}
