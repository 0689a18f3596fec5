package descent

import "github.com/san-kum/galtonsim/internal/board"

// Source is the uniform [0, 1) generator paths are drawn from. *rand.Rand
// satisfies it.
type Source interface {
	Float64() float64
}

type Step int8

const (
	Left  Step = -1
	Right Step = 1
)

func (s Step) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Path is one ball's precomputed descent: a start column on row 0 and one
// left/right decision per level transition.
type Path struct {
	start int
	steps []Step
}

// NewPath builds a path from explicit decisions.
func NewPath(levels int, steps ...Step) Path {
	s := make([]Step, len(steps))
	copy(s, steps)
	return Path{start: levels - 1, steps: s}
}

// Simulate draws levels-1 independent Bernoulli(p) trials from rng, going
// right whenever the draw is below p.
func Simulate(levels int, p float64, rng Source) Path {
	n := levels - 1
	if n < 0 {
		n = 0
	}
	steps := make([]Step, n)
	for i := range steps {
		if rng.Float64() < p {
			steps[i] = Right
		} else {
			steps[i] = Left
		}
	}
	return Path{start: levels - 1, steps: steps}
}

func (p Path) Len() int   { return len(p.steps) }
func (p Path) Start() int { return p.start }

func (p Path) Steps() []Step {
	s := make([]Step, len(p.steps))
	copy(s, p.steps)
	return s
}

// Column returns the column the ball occupies on the given row.
func (p Path) Column(row int) int {
	col := p.start
	for i := 0; i < row && i < len(p.steps); i++ {
		col += int(p.steps[i])
	}
	return col
}

func (p Path) FinalColumn() int { return p.Column(len(p.steps)) }

// Bin is the terminal bin index. Bottom-row columns are always even.
func (p Path) Bin() int { return p.FinalColumn() / 2 }

// Rights counts the right decisions, which equals the bin index.
func (p Path) Rights() int {
	n := 0
	for _, s := range p.steps {
		if s == Right {
			n++
		}
	}
	return n
}

// RecordStep marks the peg reached on the given row as hit and returns its
// column and new hit count. Row 0 is the starting peg and is never recorded.
func RecordStep(b *board.Board, p Path, row int) (col, hits int) {
	col = p.Column(row)
	if row == 0 {
		return col, b.Hits(0, col)
	}
	return col, b.Hit(row, col)
}

// Record applies a whole path to the board: every peg on rows 1..levels-1
// in row order, then the landing bin.
func Record(b *board.Board, p Path) int {
	for row := 1; row <= p.Len(); row++ {
		RecordStep(b, p, row)
	}
	return b.Land(p.Bin())
}

// Descend simulates one ball on b and records it.
func Descend(b *board.Board, rng Source) Path {
	p := Simulate(b.Levels(), b.Prob(), rng)
	Record(b, p)
	return p
}
