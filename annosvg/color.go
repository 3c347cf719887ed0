package annosvg

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errInvalidColor = errors.New("annosvg: invalid color")

// ParseColor reads a CSS color: a named color, #rgb, #rrggbb,
// #rrggbbaa, rgb() or rgba().
// "none", "transparent" and the empty string are fully transparent.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, nil
	case "currentcolor":
		return color.NRGBA{A: 0xff}, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		return parseHex(hex)
	}
	if args, ok := cutFunction(s, "rgba"); ok {
		return parseRGB(args, true)
	}
	if args, ok := cutFunction(s, "rgb"); ok {
		return parseRGB(args, false)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", errInvalidColor, s)
}

func cutFunction(s, name string) (string, bool) {
	rest, ok := strings.CutPrefix(s, name+"(")
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, ")")
}

func parseHex(hex string) (color.NRGBA, error) {
	switch len(hex) {
	case 3, 4:
		// each digit is doubled
		var long strings.Builder
		for _, r := range hex {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		hex = long.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: #%s", errInvalidColor, hex)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: #%s", errInvalidColor, hex)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseRGB(args string, withAlpha bool) (color.NRGBA, error) {
	fields := splitOnCommaOrSpace(args)
	if (withAlpha && len(fields) != 4) || (!withAlpha && len(fields) != 3) {
		return color.NRGBA{}, fmt.Errorf("%w: rgb(%s)", errInvalidColor, args)
	}
	var channels [3]uint8
	for i := range channels {
		f, err := readFraction(fields[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: rgb(%s)", errInvalidColor, args)
		}
		channels[i] = clampByte(f)
	}
	out := color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: 0xff}
	if withAlpha {
		a, err := readFraction(fields[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: rgba(%s)", errInvalidColor, args)
		}
		out.A = clampByte(a * 255)
	}
	return out, nil
}

// readFraction reads a number, or a percentage of full.
func readFraction(v string, full float64) (float64, error) {
	v = strings.TrimSpace(v)
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		return f / 100 * full, err
	}
	return strconv.ParseFloat(v, 64)
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ParseDashes reads a stroke-dasharray value. "none" and
// the empty string mean a solid line.
func ParseDashes(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return nil, nil
	}
	fields := splitOnCommaOrSpace(s)
	out := make([]float64, 0, len(fields))
	allZero := true
	for _, f := range fields {
		v, err := parseLength(f)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("annosvg: negative dash length in %q", s)
		}
		if v != 0 {
			allZero = false
		}
		out = append(out, v)
	}
	if allZero {
		return nil, nil
	}
	if len(out)%2 == 1 {
		out = append(out, out...)
	}
	return out, nil
}
