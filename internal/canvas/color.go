package canvas

import (
	"encoding/json"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// defaultColor is used when a stroke declares no color, or one that
// does not parse.
var defaultColor = color.RGBA{R: 0xff, A: 0xff}

const defaultWidth = 3

// resolveColor parses a CSS-style color: a named color, "#rgb", "#rgba",
// "#rrggbb", "#rrggbbaa" (the leading '#' may be omitted), or
// "rgb(r,g,b)" / "rgba(r,g,b,a)". Alpha is forced to full opacity.
// Absent and non-string values resolve to opaque red, as do strings
// that do not parse.
func resolveColor(raw json.RawMessage) color.RGBA {
	var s string
	if len(raw) != 0 {
		if err := json.Unmarshal(raw, &s); err != nil {
			return defaultColor
		}
	}
	c, ok := parseColor(s)
	if !ok {
		return defaultColor
	}
	c.A = 0xff
	return c
}

func parseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGBFunc(s)
	}
	return parseHex(s)
}

func parseHex(s string) (color.RGBA, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	var digits string
	switch len(s) {
	case 3:
		digits = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2], 'f', 'f'})
	case 4:
		digits = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2], s[3], s[3]})
	case 6:
		digits = s + "ff"
	case 8:
		digits = s
	default:
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, true
}

// parseRGBFunc accepts the functional notations "rgb(r, g, b)" and
// "rgba(r, g, b, a)" with byte channels and a fractional alpha.
func parseRGBFunc(s string) (color.RGBA, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return color.RGBA{}, false
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, false
	}
	var chans [3]uint8
	for i, p := range parts[:3] {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		chans[i] = uint8(v)
	}
	a := 1.0
	if len(parts) == 4 {
		var err error
		a, err = strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.RGBA{}, false
		}
	}
	return color.RGBA{R: chans[0], G: chans[1], B: chans[2], A: uint8(a*255 + 0.5)}, true
}
