package anim

import (
	"errors"
	"sync"
	"time"

	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/descent"
	"github.com/tanema/gween/ease"
)

// ErrNoBalls indicates a batch was requested with fewer than one ball.
var ErrNoBalls = errors.New("anim: batch needs at least one ball")

// Batch plays back one drop of every configured ball. It is driven entirely
// by Advance and is not safe for concurrent use.
type Batch struct {
	board  *board.Board
	sink   Sink
	timing Timing
	balls  []*Ball

	// unit stagger fractions, one per gap between consecutive releases
	gaps      []float64
	released  int
	untilNext time.Duration
	remaining int

	bars    []float64
	elapsed time.Duration

	started   bool
	completed bool
	canceled  bool
	done      chan struct{}
	doneOnce  sync.Once
}

// NewBatch precomputes every path and stagger gap from rng. It does not
// touch the board until Start.
func NewBatch(b *board.Board, balls int, timing Timing, rng descent.Source, sink Sink) (*Batch, error) {
	if balls < 1 {
		return nil, ErrNoBalls
	}
	if sink == nil {
		sink = NopSink{}
	}

	bt := &Batch{
		board:     b,
		sink:      sink,
		timing:    timing,
		balls:     make([]*Ball, balls),
		gaps:      make([]float64, 0, balls-1),
		remaining: balls,
		bars:      make([]float64, b.Levels()),
		done:      make(chan struct{}),
	}

	for i := range bt.balls {
		bt.balls[i] = &Ball{
			ID:   i,
			Path: descent.Simulate(b.Levels(), b.Prob(), rng),
		}
		if i < balls-1 {
			bt.gaps = append(bt.gaps, rng.Float64())
		}
	}

	return bt, nil
}

// Start resets the board's counts and every peg and bar on the sink, then
// announces the batch. Advance calls it when needed.
func (bt *Batch) Start() {
	if bt.started || bt.canceled {
		return
	}
	bt.started = true
	bt.board.Reset()

	bt.sink.BatchStarted()
	for _, peg := range bt.board.Pegs() {
		if peg.Row > 0 {
			bt.sink.PegColor(peg.Row, peg.Col, 0)
		}
	}
	for i := range bt.bars {
		bt.bars[i] = 0
		bt.sink.BinBar(i, 0)
	}
}

// Advance is one scheduler step: it releases every ball that is due within
// dt, advances every active ball, and reports whether the batch is over.
func (bt *Batch) Advance(dt time.Duration) bool {
	if bt.Finished() {
		return true
	}
	bt.Start()
	bt.elapsed += dt

	active := bt.balls[:bt.released]
	for _, ball := range active {
		bt.step(ball, dt)
	}

	spent := time.Duration(0)
	for bt.released < len(bt.balls) {
		left := dt - spent
		if bt.untilNext > left {
			bt.untilNext -= left
			break
		}
		spent += bt.untilNext
		ball := bt.release()
		bt.step(ball, dt-spent)
	}

	if bt.remaining == 0 {
		bt.complete()
	}
	return bt.Finished()
}

// Cancel abandons the batch. Further Advance calls emit nothing.
func (bt *Batch) Cancel() {
	if bt.completed {
		return
	}
	bt.canceled = true
	bt.doneOnce.Do(func() { close(bt.done) })
}

// SetSpeed changes the speed factor for tweens and delays started from now on.
func (bt *Batch) SetSpeed(speed float64) {
	if speed > 0 {
		bt.timing.Speed = speed
	}
}

// Done is closed once every ball is disposed or the batch is canceled.
func (bt *Batch) Done() <-chan struct{} { return bt.done }

func (bt *Batch) Finished() bool         { return bt.completed || bt.canceled }
func (bt *Batch) Completed() bool        { return bt.completed }
func (bt *Batch) Canceled() bool         { return bt.canceled }
func (bt *Batch) Elapsed() time.Duration { return bt.elapsed }
func (bt *Batch) Len() int               { return len(bt.balls) }

// Remaining is the number of balls not yet disposed.
func (bt *Batch) Remaining() int { return bt.remaining }

func (bt *Batch) Ball(i int) *Ball { return bt.balls[i] }

// Paths returns every ball's path in release order.
func (bt *Batch) Paths() []descent.Path {
	out := make([]descent.Path, len(bt.balls))
	for i, b := range bt.balls {
		out[i] = b.Path
	}
	return out
}

// BarHeight is the displayed height of a bin's actual bar.
func (bt *Batch) BarHeight(bin int) float64 { return bt.bars[bin] }

func (bt *Batch) release() *Ball {
	ball := bt.balls[bt.released]
	bt.released++

	if bt.released < len(bt.balls) {
		gap := bt.gaps[bt.released-1]
		bt.untilNext = time.Duration(gap * float64(bt.timing.scaled(bt.timing.BallInterval)))
	}

	ball.state = Dropping
	ball.row = 0
	ball.x, ball.y = bt.board.Layout().Location(ball.Path.Start(), 0)
	ball.opacity = bt.timing.StartOpacity
	bt.sink.BallPosition(ball.ID, ball.x, ball.y)
	bt.sink.BallOpacity(ball.ID, ball.opacity)

	if ball.Path.Len() == 0 {
		bt.land(ball)
	} else {
		bt.move(ball)
	}
	return ball
}

// move starts the transition from the ball's current row to the next one.
func (bt *Batch) move(ball *Ball) {
	d := bt.timing.scaled(bt.timing.PegInterval)
	toX, toY := bt.board.Layout().Location(ball.Path.Column(ball.row+1), ball.row+1)
	ball.moveX = NewTween(ball.x, toX, d, ease.OutQuad)
	ball.moveY = NewTween(ball.y, toY, d, ease.OutQuad)
}

// land enters the landing state: the ball falls through, fades, and its
// bin's bar grows to the height implied by the new count.
func (bt *Batch) land(ball *Ball) {
	ball.state = Landing
	bin := ball.Bin()
	bt.board.Land(bin)

	d := bt.timing.scaled(bt.timing.LandingDuration)
	target := bt.board.ActualHeight(bin, len(bt.balls))
	ball.fall = NewTween(ball.y, ball.y+bt.timing.FallOffset, d, ease.OutQuad)
	ball.fade = NewTween(ball.opacity, 0, d, ease.OutQuad)
	ball.bar = NewTween(bt.bars[bin], target, d, ease.InQuad)
}

func (bt *Batch) step(ball *Ball, dt time.Duration) {
	for {
		switch ball.state {
		case Dropping:
			x, _, _ := ball.moveX.Advance(dt)
			y, rest, done := ball.moveY.Advance(dt)
			ball.x, ball.y = x, y
			bt.sink.BallPosition(ball.ID, x, y)
			if !done {
				return
			}
			dt = rest

			ball.row++
			col, hits := descent.RecordStep(bt.board, ball.Path, ball.row)
			bt.sink.PegColor(ball.row, col, float64(hits)/float64(len(bt.balls)))

			if ball.row < ball.Path.Len() {
				bt.move(ball)
			} else {
				bt.land(ball)
			}

		case Landing:
			y, _, done := ball.fall.Advance(dt)
			opacity, _, _ := ball.fade.Advance(dt)
			h, _, _ := ball.bar.Advance(dt)
			ball.y, ball.opacity = y, opacity

			bin := ball.Bin()
			bt.bars[bin] = h
			bt.sink.BallPosition(ball.ID, ball.x, y)
			bt.sink.BallOpacity(ball.ID, opacity)
			bt.sink.BinBar(bin, h)
			if !done {
				return
			}

			ball.state = Disposed
			bt.remaining--
			return

		default:
			return
		}
	}
}

// complete publishes the final aggregate bars so every bin settles on the
// exact height implied by its count, whatever order landings finished in.
func (bt *Batch) complete() {
	bt.completed = true
	for i := range bt.bars {
		bt.bars[i] = bt.board.ActualHeight(i, len(bt.balls))
		bt.sink.BinBar(i, bt.bars[i])
	}
	bt.sink.BatchCompleted()
	bt.doneOnce.Do(func() { close(bt.done) })
}
