package board

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/galtonsim/internal/prob"
)

var (
	// ErrInvalidLevels indicates a level count below one.
	ErrInvalidLevels = errors.New("board: level count must be positive")

	// ErrInvalidProbability indicates a right-probability outside [0, 1].
	ErrInvalidProbability = errors.New("board: probability must be within [0, 1]")
)

type Peg struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Hits int `json:"hits"`
}

// Bin is a terminal column on the bottom row. Expected is fixed when the
// board is built; Count accumulates during a run.
type Bin struct {
	Index    int
	Count    int
	Expected float64
}

// Column is the lattice column of the bottom-row peg above this bin.
func (b Bin) Column() int { return 2 * b.Index }

// Board is one triangular lattice of pegs with its bins. It is discarded and
// rebuilt whenever the level count or probability change.
type Board struct {
	levels     int
	prob       float64
	layout     Layout
	scale      float64
	degenerate bool

	hits [][]int
	bins []Bin
}

func New(levels int, p float64, layout Layout) (*Board, error) {
	if levels < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidLevels, levels)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidProbability, p)
	}

	b := &Board{
		levels: levels,
		prob:   p,
		layout: layout,
		hits:   make([][]int, levels),
		bins:   make([]Bin, levels),
	}

	width := 2*levels - 1
	for row := range b.hits {
		b.hits[row] = make([]int, width)
	}

	for i := range b.bins {
		b.bins[i] = Bin{
			Index:    i,
			Expected: prob.Binomial(levels-1, i, p),
		}
	}

	scale, err := prob.ScaleFactor(levels, p, layout.GraphHeight)
	b.scale = scale
	b.degenerate = errors.Is(err, prob.ErrDegenerateDistribution)

	return b, nil
}

func (b *Board) Levels() int    { return b.levels }
func (b *Board) Prob() float64  { return b.prob }
func (b *Board) Layout() Layout { return b.layout }

// Scale converts probabilities into bar heights.
func (b *Board) Scale() float64 { return b.scale }

// Degenerate reports whether Scale was clamped because the mode probability
// underflowed.
func (b *Board) Degenerate() bool { return b.degenerate }

// StartColumn is the column of the single peg on row 0.
func (b *Board) StartColumn() int { return b.levels - 1 }

// Valid reports whether (row, col) is a peg on this lattice.
func (b *Board) Valid(row, col int) bool {
	if row < 0 || row >= b.levels {
		return false
	}
	lo := b.levels - 1 - row
	hi := b.levels - 1 + row
	return col >= lo && col <= hi && (col-lo)%2 == 0
}

// Hit records a ball passing through a peg and returns the new hit count.
func (b *Board) Hit(row, col int) int {
	b.mustPeg(row, col)
	b.hits[row][col]++
	return b.hits[row][col]
}

func (b *Board) Hits(row, col int) int {
	b.mustPeg(row, col)
	return b.hits[row][col]
}

// HitRatio is the fraction of a run's balls that passed through a peg.
func (b *Board) HitRatio(row, col, balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return float64(b.Hits(row, col)) / float64(balls)
}

// Land records a ball arriving in a bin and returns the new count.
func (b *Board) Land(bin int) int {
	b.mustBin(bin)
	b.bins[bin].Count++
	return b.bins[bin].Count
}

func (b *Board) Bin(i int) Bin {
	b.mustBin(i)
	return b.bins[i]
}

// Bins returns a copy of every bin in index order.
func (b *Board) Bins() []Bin {
	out := make([]Bin, len(b.bins))
	copy(out, b.bins)
	return out
}

// Counts returns the actual count of every bin in index order.
func (b *Board) Counts() []int {
	out := make([]int, len(b.bins))
	for i, bin := range b.bins {
		out[i] = bin.Count
	}
	return out
}

// Expected returns the expected probability of every bin in index order.
func (b *Board) Expected() []float64 {
	out := make([]float64, len(b.bins))
	for i, bin := range b.bins {
		out[i] = bin.Expected
	}
	return out
}

// Total is the number of balls landed since the last reset.
func (b *Board) Total() int {
	n := 0
	for _, bin := range b.bins {
		n += bin.Count
	}
	return n
}

// Pegs lists every peg in row order, left to right within a row.
func (b *Board) Pegs() []Peg {
	pegs := make([]Peg, 0, b.levels*(b.levels+1)/2)
	for row := 0; row < b.levels; row++ {
		for col := b.levels - 1 - row; col <= b.levels-1+row; col += 2 {
			pegs = append(pegs, Peg{Row: row, Col: col, Hits: b.hits[row][col]})
		}
	}
	return pegs
}

// Reset zeroes every hit and bin count. Expected probabilities are kept.
func (b *Board) Reset() {
	for row := range b.hits {
		for col := range b.hits[row] {
			b.hits[row][col] = 0
		}
	}
	for i := range b.bins {
		b.bins[i].Count = 0
	}
}

// ExpectedHeight is the bar height for a bin's expected probability.
func (b *Board) ExpectedHeight(bin int) float64 {
	return b.scale * b.Bin(bin).Expected
}

// ActualHeight is the bar height implied by a bin's count out of balls.
func (b *Board) ActualHeight(bin, balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return b.scale * float64(b.Bin(bin).Count) / float64(balls)
}

func (b *Board) mustPeg(row, col int) {
	if !b.Valid(row, col) {
		panic(fmt.Sprintf("board: peg (%d, %d) is not on a %d-level lattice", row, col, b.levels))
	}
}

func (b *Board) mustBin(i int) {
	if i < 0 || i >= len(b.bins) {
		panic(fmt.Sprintf("board: bin %d out of range [0, %d)", i, len(b.bins)))
	}
}
