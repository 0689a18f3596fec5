package viz

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Random is the subset of *rand.Rand used for ball colour jitter.
type Random interface {
	Float64() float64
}

// jitterStep is how far one unit of darken or saturate moves lightness or
// chroma in HCL.
const jitterStep = 0.18

type Palette struct {
	Empty      colorful.Color
	Ball       colorful.Color
	Background colorful.Color
}

func NewPalette(t Theme) Palette {
	return Palette{
		Empty:      parseHex(t.PegEmpty, colorful.Color{R: 1, G: 1, B: 1}),
		Ball:       parseHex(t.Ball, colorful.Color{R: 0.18, G: 0.4, B: 0.65}),
		Background: parseHex(t.Background, colorful.Color{}),
	}
}

// Peg maps a hit ratio in [0, 1] onto the empty→ball scale.
func (p Palette) Peg(ratio float64) colorful.Color {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return p.Empty.BlendRgb(p.Ball, ratio).Clamped()
}

// RandomBall draws a per-ball colour: the ball colour darkened and saturated
// by independent amounts in [-1, 1).
func (p Palette) RandomBall(r Random) colorful.Color {
	return Jitter(p.Ball, 2*r.Float64()-1, 2*r.Float64()-1)
}

// Faded blends c toward the background by 1-opacity.
func (p Palette) Faded(c colorful.Color, opacity float64) colorful.Color {
	if opacity >= 1 {
		return c
	}
	if opacity <= 0 {
		return p.Background
	}
	return p.Background.BlendRgb(c, opacity).Clamped()
}

func Jitter(base colorful.Color, darken, saturate float64) colorful.Color {
	h, c, l := base.Hcl()
	l = clamp01(l - jitterStep*darken)
	c = math.Max(0, c+jitterStep*saturate)
	return colorful.Hcl(h, c, l).Clamped()
}

func parseHex(s string, fallback colorful.Color) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
