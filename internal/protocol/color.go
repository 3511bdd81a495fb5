package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGB value as the controller stores it: one byte per
// channel.  The unit-interval view used by callers is derived from it.
type Color struct {
	R, G, B uint8
}

// ChannelToByte converts a unit-interval channel to a byte with
// round(f*255), clamped to [0,255].  NaN maps to 0.
func ChannelToByte(f float64) uint8 {
	if math.IsNaN(f) {
		return 0
	}
	v := math.Round(f * 255)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// ByteToChannel converts a byte to its unit-interval value, b/255.
func ByteToChannel(b uint8) float64 {
	return float64(b) / 255
}

// ColorFromFloats builds a Color from three unit-interval channels.
func ColorFromFloats(r, g, b float64) Color {
	return Color{R: ChannelToByte(r), G: ChannelToByte(g), B: ChannelToByte(b)}
}

// Floats returns the unit-interval view of c.
func (c Color) Floats() (r, g, b float64) {
	return ByteToChannel(c.R), ByteToChannel(c.G), ByteToChannel(c.B)
}

// Hex returns c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	r, g, b := c.Floats()
	return fmt.Sprintf("%s (%.3f, %.3f, %.3f)", c.Hex(), r, g, b)
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
