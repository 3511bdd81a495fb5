package core

import (
	"errors"
	"testing"

	perr "piled/internal/errors"
	"piled/internal/protocol"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		want Action
	}{
		{"color", []string{"#ff8800"}, Action{Kind: ActionColor, Color: protocol.Color{R: 255, G: 136}}},
		{"color", []string{"1", "0.5", "0"}, Action{Kind: ActionColor, Color: protocol.Color{R: 255, G: 128}}},
		{"fade", []string{"#0000ff", "40", "3"}, Action{Kind: ActionFade, Color: protocol.Color{B: 255}, Duration: 40, Speed: 3}},
		{"pulse", []string{"0", "1", "0", "255", "0"}, Action{Kind: ActionPulse, Color: protocol.Color{G: 255}, Duration: 255}},
		{"suspend", nil, Action{Kind: ActionSuspend}},
		{"get", nil, Action{Kind: ActionGet}},
	}
	for _, tc := range tests {
		got, err := ParseAction(tc.cmd, tc.args)
		if err != nil {
			t.Errorf("%s %v: %v", tc.cmd, tc.args, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s %v = %+v, want %+v", tc.cmd, tc.args, got, tc.want)
		}
	}
}

func TestParseAction_Errors(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
	}{
		{"color", nil},
		{"color", []string{"red"}},
		{"color", []string{"1", "2", "0"}},
		{"color", []string{"1", "x", "0"}},
		{"fade", []string{"#ffffff"}},
		{"fade", []string{"#ffffff", "ten", "1"}},
		{"suspend", []string{"now"}},
		{"explode", nil},
	}
	for _, tc := range tests {
		if _, err := ParseAction(tc.cmd, tc.args); err == nil {
			t.Errorf("%s %v: expected error", tc.cmd, tc.args)
		}
	}
}

// TestAction_Command_OutOfRange verifies range errors come from the
// encoder, not the parser.
func TestAction_Command_OutOfRange(t *testing.T) {
	a, err := ParseAction("fade", []string{"#ffffff", "300", "1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := a.Command(); !errors.Is(err, perr.ErrValueOutOfRange) {
		t.Errorf("err = %v, want ErrValueOutOfRange", err)
	}
}

func TestAction_Command(t *testing.T) {
	tests := []struct {
		a    Action
		op   protocol.Opcode
		size int
	}{
		{Action{Kind: ActionColor}, protocol.OpSetColor, 5},
		{Action{Kind: ActionFade}, protocol.OpSetFadeAnimation, 5},
		{Action{Kind: ActionPulse}, protocol.OpSetPulseAnimation, 5},
		{Action{Kind: ActionSuspend}, protocol.OpToggleSuspend, 5},
		{Action{Kind: ActionGet}, protocol.OpGetCurrentColor, 0},
	}
	for _, tc := range tests {
		cmd, err := tc.a.Command()
		if err != nil {
			t.Errorf("%s: %v", tc.a.Kind, err)
			continue
		}
		if cmd.Op != tc.op || len(cmd.Payload) != tc.size {
			t.Errorf("%s: op=%s len=%d", tc.a.Kind, cmd.Op, len(cmd.Payload))
		}
	}
}

func TestTriggerAction(t *testing.T) {
	a, err := TriggerAction("piled://room_presence")
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind != ActionSuspend {
		t.Errorf("kind = %s, want suspend", a.Kind)
	}

	for _, uri := range []string{
		"http://room_presence",
		"piled://kitchen",
		"piled://%zz",
		"",
	} {
		if _, err := TriggerAction(uri); err == nil {
			t.Errorf("%q: expected error", uri)
		}
	}
}
