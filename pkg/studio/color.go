package studio

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor accepts #RGB, #RRGGBB or a CSS color name.
func parseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	if strings.HasPrefix(v, "#") {
		return parseHex(v[1:], s)
	}

	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}

	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}

func parseHex(hex, orig string) (color.RGBA, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", orig)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", orig)
	}

	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// parseColors resolves several colors, stopping at the first bad one.
func parseColors(specs ...string) ([]color.RGBA, error) {
	out := make([]color.RGBA, len(specs))
	for i, s := range specs {
		c, err := parseColor(s)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}

	return out, nil
}
