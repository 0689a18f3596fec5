package viz

import (
	"math/rand"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galtonsim/internal/board"
)

type sprite struct {
	x, y    float64
	opacity float64
	color   colorful.Color
}

// Scene is the drawable state of one board. It implements anim.Sink and is
// safe to update from the goroutine advancing a batch while another draws.
type Scene struct {
	mu sync.Mutex

	levels   int
	layout   board.Layout
	palette  Palette
	rng      *rand.Rand
	pegs     map[[2]int]float64
	expected []float64
	bars     []float64
	balls    map[int]*sprite
	running  bool
}

func NewScene(palette Palette, seed int64) *Scene {
	return &Scene{
		palette: palette,
		rng:     rand.New(rand.NewSource(seed)),
		pegs:    make(map[[2]int]float64),
		balls:   make(map[int]*sprite),
	}
}

// Reset clears the scene for a freshly built board and fills in its
// expected bars.
func (s *Scene) Reset(b *board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.levels = b.Levels()
	s.layout = b.Layout()
	s.pegs = make(map[[2]int]float64)
	s.balls = make(map[int]*sprite)
	s.running = false
	s.expected = make([]float64, b.Levels())
	s.bars = make([]float64, b.Levels())
	for i := range s.expected {
		s.expected[i] = b.ExpectedHeight(i)
	}
}

func (s *Scene) SetPalette(p Palette) {
	s.mu.Lock()
	s.palette = p
	s.mu.Unlock()
}

func (s *Scene) PegColor(row, col int, ratio float64) {
	s.mu.Lock()
	s.pegs[[2]int{row, col}] = ratio
	s.mu.Unlock()
}

func (s *Scene) BinBar(bin int, h float64) {
	s.mu.Lock()
	if bin >= 0 && bin < len(s.bars) {
		s.bars[bin] = h
	}
	s.mu.Unlock()
}

func (s *Scene) BallPosition(ball int, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.balls[ball]
	if !ok {
		sp = &sprite{opacity: 1, color: s.palette.RandomBall(s.rng)}
		s.balls[ball] = sp
	}
	sp.x, sp.y = x, y
}

// BallOpacity removes a ball once it has fully faded.
func (s *Scene) BallOpacity(ball int, opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.balls[ball]
	if !ok {
		return
	}
	if opacity <= 0 {
		delete(s.balls, ball)
		return
	}
	sp.opacity = opacity
}

func (s *Scene) BatchStarted() {
	s.mu.Lock()
	s.running = true
	s.balls = make(map[int]*sprite)
	s.mu.Unlock()
}

func (s *Scene) BatchCompleted() {
	s.mu.Lock()
	s.running = false
	s.balls = make(map[int]*sprite)
	s.mu.Unlock()
}

func (s *Scene) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scene) Balls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.balls)
}

func (s *Scene) PegRatio(row, col int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pegs[[2]int{row, col}]
}

func (s *Scene) Bar(bin int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bin < 0 || bin >= len(s.bars) {
		return 0
	}
	return s.bars[bin]
}

// Draw paints the scene onto c. scale is the number of layout units per
// sub-pixel.
func (s *Scene) Draw(c *Canvas, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scale <= 0 {
		scale = 1
	}
	px := func(v float64) float64 { return v / scale }
	ball := s.palette.Ball.Hex()
	outline := s.palette.Faded(s.palette.Ball, 0.5).Hex()

	top := s.layout.BarTop(s.levels)
	half := s.layout.XSpacing / 2
	for i := range s.expected {
		x, _ := s.layout.Location(2*i, s.levels-1)
		c.StrokeRect(px(x-half), px(top), px(x+half), px(top+s.expected[i]), outline)
		if s.bars[i] > 0 {
			c.FillRect(px(x-half)+1, px(top), px(x+half)-1, px(top+s.bars[i]), ball)
		}
	}

	for row := 0; row < s.levels; row++ {
		for col := s.levels - 1 - row; col <= s.levels-1+row; col += 2 {
			x, y := s.layout.Location(col, row)
			color := s.palette.Peg(s.pegs[[2]int{row, col}])
			if row == 0 {
				color = s.palette.Ball
			}
			c.FillCircle(px(x), px(y), px(s.layout.PegRadius), color.Hex())
		}
	}

	for _, sp := range s.balls {
		c.FillCircle(px(sp.x), px(sp.y), px(s.layout.BallRadius), s.palette.Faded(sp.color, sp.opacity).Hex())
	}
}

// FitScale returns the layout units per sub-pixel needed to fit the whole
// board into a canvas of w x h cells.
func (s *Scene) FitScale(w, h int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	bw, bh := s.layout.Size(s.levels)
	if w < 1 || h < 1 || bw <= 0 || bh <= 0 {
		return 1
	}
	sx := bw / float64(w*2)
	sy := bh / float64(h*4)
	if sx > sy {
		return sx
	}
	return sy
}
