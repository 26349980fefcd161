package model

import "strings"

// Color is the marker color shown for a vehicle position.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorViolet Color = "violet"
	ColorYellow Color = "yellow"
	// ColorNone is the "no" color used when a position carries no marker.
	ColorNone Color = "no"
)

// ParseColor maps a color name to a Color. Matching ignores case and
// surrounding whitespace.
func ParseColor(s string) (Color, bool) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case ColorBlue, ColorGreen, ColorRed, ColorViolet, ColorYellow, ColorNone:
		return c, true
	}
	return ColorNone, false
}

func (c Color) String() string { return string(c) }
