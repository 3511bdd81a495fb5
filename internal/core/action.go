package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"piled/internal/protocol"
	"piled/internal/session"
)

// ActionKind names a controller operation reachable from the CLI.
type ActionKind string

const (
	ActionColor   ActionKind = "color"
	ActionFade    ActionKind = "fade"
	ActionPulse   ActionKind = "pulse"
	ActionSuspend ActionKind = "suspend"
	ActionGet     ActionKind = "get"
)

// Action is a parsed one-shot command.
type Action struct {
	Kind     ActionKind
	Color    protocol.Color
	Duration int
	Speed    int
}

func (a Action) String() string {
	switch a.Kind {
	case ActionColor:
		return fmt.Sprintf("color %s", a.Color.Hex())
	case ActionFade, ActionPulse:
		return fmt.Sprintf("%s %s duration=%d speed=%d", a.Kind, a.Color.Hex(), a.Duration, a.Speed)
	default:
		return string(a.Kind)
	}
}

// ParseAction reads a command and its arguments.  Colors are given as
// "#rrggbb" or as three channel values in [0,1]; fade and pulse take
// duration and speed after the color.
//
//	color #ff8800
//	color 1 0.5 0
//	fade  #0000ff 40 3
//	suspend
func ParseAction(cmd string, args []string) (Action, error) {
	a := Action{Kind: ActionKind(cmd)}
	switch a.Kind {
	case ActionColor:
		c, err := parseColor(args)
		if err != nil {
			return Action{}, err
		}
		a.Color = c
	case ActionFade, ActionPulse:
		if len(args) < 3 {
			return Action{}, fmt.Errorf("%s: expected <color> <duration> <speed>", cmd)
		}
		n := len(args)
		c, err := parseColor(args[:n-2])
		if err != nil {
			return Action{}, err
		}
		a.Color = c
		if a.Duration, err = parseByteArg("duration", args[n-2]); err != nil {
			return Action{}, err
		}
		if a.Speed, err = parseByteArg("speed", args[n-1]); err != nil {
			return Action{}, err
		}
	case ActionSuspend, ActionGet:
		if len(args) != 0 {
			return Action{}, fmt.Errorf("%s takes no arguments", cmd)
		}
	default:
		return Action{}, fmt.Errorf("unknown command %q", cmd)
	}
	return a, nil
}

// Command encodes the action for the wire.
func (a Action) Command() (protocol.Command, error) {
	switch a.Kind {
	case ActionColor:
		return protocol.SetColor(a.Color), nil
	case ActionFade:
		return protocol.Fade(a.Color, a.Duration, a.Speed)
	case ActionPulse:
		return protocol.Pulse(a.Color, a.Duration, a.Speed)
	case ActionSuspend:
		return protocol.ToggleSuspend(), nil
	case ActionGet:
		return protocol.GetCurrentColor(), nil
	}
	return protocol.Command{}, fmt.Errorf("unknown action %q", a.Kind)
}

// Apply sends the action over s.
func (a Action) Apply(ctx context.Context, s *session.Session) error {
	switch a.Kind {
	case ActionColor:
		return s.SetColor(ctx, a.Color)
	case ActionFade:
		return s.Fade(ctx, a.Color, a.Duration, a.Speed)
	case ActionPulse:
		return s.Pulse(ctx, a.Color, a.Duration, a.Speed)
	case ActionSuspend:
		return s.ToggleSuspend(ctx)
	case ActionGet:
		return s.RequestCurrentColor(ctx)
	}
	return fmt.Errorf("unknown action %q", a.Kind)
}

func parseColor(args []string) (protocol.Color, error) {
	switch len(args) {
	case 1:
		return protocol.ParseHexColor(args[0])
	case 3:
		var ch [3]float64
		for i, s := range args {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return protocol.Color{}, fmt.Errorf("channel %q: not a number", s)
			}
			if f < 0 || f > 1 {
				return protocol.Color{}, fmt.Errorf("channel %q: must be within [0,1]", s)
			}
			ch[i] = f
		}
		return protocol.ColorFromFloats(ch[0], ch[1], ch[2]), nil
	default:
		return protocol.Color{}, fmt.Errorf("color: expected #rrggbb or three values in [0,1], got %q",
			strings.Join(args, " "))
	}
}

// parseByteArg only checks syntax; the range check belongs to the
// encoder so every caller gets the same ErrValueOutOfRange.
func parseByteArg(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not an integer", name, s)
	}
	return v, nil
}
