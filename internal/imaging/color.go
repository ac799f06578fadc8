package imaging

import (
	"fmt"
	"image/color"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseHexColor parses a color string like "#FF0000" or "#FF000080".
//
// The leading '#' is optional. Six digits give an opaque color, eight digits
// carry the alpha channel in the last byte.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length %d", len(hex))
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// Tint mixes base toward target by t in [0,1], interpolating in CIE L*a*b*
// so that intermediate tints keep a natural lightness. The result is opaque.
func Tint(base, target color.Color, t float64) color.NRGBA {
	switch {
	case t <= 0:
		return opaque(base)
	case t >= 1:
		return opaque(target)
	}
	from, _ := colorful.MakeColor(opaque(base))
	to, _ := colorful.MakeColor(opaque(target))
	r, g, b := from.BlendLab(to, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(opaque(c))
	return cf.Hex()
}

func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}
