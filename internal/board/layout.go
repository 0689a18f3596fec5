package board

import "math"

// Layout holds the fixed spacing constants that map lattice coordinates to
// drawing coordinates. It carries no per-board state.
type Layout struct {
	PegRadius   float64 `yaml:"peg_radius"`
	BallRadius  float64 `yaml:"ball_radius"`
	XSpacing    float64 `yaml:"x_spacing"`
	YSpacing    float64 `yaml:"y_spacing"`
	GraphHeight float64 `yaml:"graph_height"`
}

func DefaultLayout() Layout {
	return Layout{
		PegRadius:   3,
		BallRadius:  10,
		XSpacing:    30,
		YSpacing:    20,
		GraphHeight: 300,
	}
}

// Padding is the margin kept around the lattice so balls and bars are never
// clipped at the edges.
func (l Layout) Padding() float64 {
	return math.Max(math.Max(l.PegRadius, l.BallRadius), l.XSpacing/2) + 5
}

// Location translates a column and row into a drawing position. Adjacent
// columns are half a peg spacing apart since each row only uses every other
// column.
func (l Layout) Location(col, row int) (x, y float64) {
	pad := l.Padding()
	return pad + float64(col)*(l.XSpacing/2), pad + float64(row)*l.YSpacing
}

// Size returns the full drawing area for a board with the given level count,
// graph included.
func (l Layout) Size(levels int) (width, height float64) {
	pad := l.Padding()
	width = float64(levels-1)*l.XSpacing + 2*pad
	height = float64(levels-1)*l.YSpacing + 2*pad + l.GraphHeight
	return width, height
}

// BarTop is the y coordinate where every bin bar starts, just below the
// bottom row of pegs.
func (l Layout) BarTop(levels int) float64 {
	_, y := l.Location(0, levels-1)
	return y + l.PegRadius + 2
}
