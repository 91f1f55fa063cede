package render

import (
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Color is an RGB color with 0-255 channels
type Color struct {
	R, G, B int
}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
	// Slate is painted behind pages whose background image is missing
	Slate = Color{66, 71, 84}
	Muted = Color{90, 90, 90}
)

// Hex parses #RRGGBB or #RGB, falling back to black for anything else
func Hex(hex string) Color {
	r, g, b := hexToRGB(hex)
	return Color{r, g, b}
}

// Props converts the color for maroto components
func (c Color) Props() *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

func hexToRGB(hex string) (r, g, b int) {
	hex = strings.TrimPrefix(hex, "#")

	channel := func(s string) int {
		if val, err := strconv.ParseInt(s, 16, 0); err == nil {
			return int(val)
		}
		return 0
	}

	switch len(hex) {
	case 6:
		r, g, b = channel(hex[0:2]), channel(hex[2:4]), channel(hex[4:6])
	case 3:
		r = channel(strings.Repeat(hex[0:1], 2))
		g = channel(strings.Repeat(hex[1:2], 2))
		b = channel(strings.Repeat(hex[2:3], 2))
	}
	return r, g, b
}
