package render

import (
	"fmt"
	"image/color"

	"knwidget/internal/model"
)

// FallbackBlockColor is used when a slot's color string does not parse.
// Matches the neutral gray the app used on parse failure.
var FallbackBlockColor = color.NRGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}

// ParseHexColor parses #RGB or #RRGGBB into an opaque NRGBA.
func ParseHexColor(s string) (color.NRGBA, error) {
	var c color.NRGBA
	c.A = 0xFF

	if len(s) == 0 || s[0] != '#' {
		return c, fmt.Errorf("render: invalid color %q", s)
	}

	hex := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	switch len(s) {
	case 4: // #RGB
		var v [3]uint8
		for i := 0; i < 3; i++ {
			n, ok := hex(s[i+1])
			if !ok {
				return c, fmt.Errorf("render: invalid color %q", s)
			}
			v[i] = n*16 + n
		}
		c.R, c.G, c.B = v[0], v[1], v[2]
	case 7: // #RRGGBB
		var v [3]uint8
		for i := 0; i < 3; i++ {
			hi, ok1 := hex(s[2*i+1])
			lo, ok2 := hex(s[2*i+2])
			if !ok1 || !ok2 {
				return c, fmt.Errorf("render: invalid color %q", s)
			}
			v[i] = hi*16 + lo
		}
		c.R, c.G, c.B = v[0], v[1], v[2]
	default:
		return c, fmt.Errorf("render: invalid color %q", s)
	}
	return c, nil
}

// blockColor resolves a slot's background color, falling back to neutral
// gray instead of failing the render.
func blockColor(hex string) color.NRGBA {
	c, err := ParseHexColor(hex)
	if err != nil {
		return FallbackBlockColor
	}
	return c
}

// palette is the per-theme color set for the grid chrome.
type palette struct {
	bg             color.NRGBA
	gridLine       color.NRGBA
	headerText     color.NRGBA
	timeText       color.NRGBA
	blockTitle     color.NRGBA
	blockSecondary color.NRGBA
}

func paletteFor(theme model.Theme) palette {
	if theme == model.ThemeLight {
		return palette{
			bg:             color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF},
			gridLine:       color.NRGBA{0xE5, 0xE7, 0xEB, 0xFF},
			headerText:     color.NRGBA{0x11, 0x18, 0x27, 0xFF},
			timeText:       color.NRGBA{0x6B, 0x72, 0x80, 0xFF},
			blockTitle:     color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF},
			blockSecondary: color.NRGBA{0xF3, 0xF4, 0xF6, 0xFF},
		}
	}
	// Dark palette mirrors the app widget.
	return palette{
		bg:             color.NRGBA{0x1A, 0x1B, 0x23, 0xFF},
		gridLine:       color.NRGBA{0x2C, 0x2D, 0x3A, 0xFF},
		headerText:     color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF},
		timeText:       color.NRGBA{0x9C, 0xA3, 0xAF, 0xFF},
		blockTitle:     color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF},
		blockSecondary: color.NRGBA{0xDD, 0xDD, 0xDD, 0xFF},
	}
}
