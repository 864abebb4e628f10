// Package palette assigns visually separated colours to community ids.
package palette

import (
	"fmt"
	"image/color"
	"math"
)

// DefaultAlpha matches the transparency used for community overlays.
const DefaultAlpha = 0.8

// Color is a non-premultiplied RGBA colour.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
	A uint8 `json:"a" yaml:"a"`
}

// RGBA returns c as an image/color value.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex returns the #rrggbb form of c.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexAlpha returns the #rrggbbaa form of c.
func (c Color) HexAlpha() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Opacity returns the alpha channel in [0, 1].
func (c Color) Opacity() float64 {
	return float64(c.A) / 255
}

// ColorMap maps community id to colour.
type ColorMap map[int]Color

// Assign gives each id in ids a colour with evenly spaced hues around the
// colour wheel, in input order, all sharing the given alpha (clamped to
// [0, 1]). Repeated ids keep the colour of their first occurrence. Distinct
// ids always get distinct RGB values.
func Assign(ids []int, alpha float64) ColorMap {
	distinct := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		distinct = append(distinct, id)
	}

	a := uint8(math.Round(clamp(alpha) * 255))
	out := make(ColorMap, len(distinct))
	used := make(map[[3]uint8]bool, len(distinct))
	n := float64(len(distinct))

	for i, id := range distinct {
		hue := float64(i) / n
		c := fromHSV(hue, 1, 1, a)
		// Hue quantisation can collide for large n; darken until unique.
		for v := 1.0; used[[3]uint8{c.R, c.G, c.B}]; {
			v -= 1.0 / 255
			if v <= 0 {
				v = 1
				hue = math.Mod(hue+1.0/1530, 1)
			}
			c = fromHSV(hue, 1, v, a)
		}
		used[[3]uint8{c.R, c.G, c.B}] = true
		out[id] = c
	}

	return out
}

// fromHSV converts hue in [0,1), saturation and value in [0,1].
func fromHSV(h, s, v float64, a uint8) Color {
	h = math.Mod(h, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return Color{R: channel(r), G: channel(g), B: channel(b), A: a}
}

func channel(x float64) uint8 {
	return uint8(math.Round(clamp(x) * 255))
}

func clamp(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
