package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/descent"
	"github.com/san-kum/galtonsim/internal/prob"
)

// Simulation owns one board and at most one batch playing on it. All methods
// are safe to call from multiple goroutines; sink callbacks run with the
// simulation locked and must not call back into it.
type Simulation struct {
	mu sync.Mutex

	params Params
	layout board.Layout
	timing anim.Timing
	sink   anim.Sink
	rng    descent.Source
	seed   int64
	log    zerolog.Logger

	board     *board.Board
	batch     *anim.Batch
	last      *anim.Batch
	drops     int
	destroyed bool
}

// New validates params and builds the first board.
func New(params Params, opts ...Option) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		params: params,
		layout: board.DefaultLayout(),
		timing: anim.DefaultTiming(),
		sink:   anim.NopSink{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		WithSeed(time.Now().UnixNano())(s)
	}
	if s.sink == nil {
		s.sink = anim.NopSink{}
	}
	if err := validateSpeed(s.timing.Speed); err != nil {
		return nil, err
	}

	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) build() error {
	b, err := board.New(s.params.Levels, s.params.ProbRight, s.layout)
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}
	if b.Degenerate() {
		s.log.Warn().
			Int("levels", s.params.Levels).
			Float64("prob_right", s.params.ProbRight).
			Err(prob.ErrDegenerateDistribution).
			Msg("bar scale clamped")
	}

	s.board = b
	s.log.Debug().
		Int("levels", s.params.Levels).
		Int("balls", s.params.Balls).
		Float64("prob_right", s.params.ProbRight).
		Float64("scale", b.Scale()).
		Msg("board built")
	return nil
}

// Configure discards the current board and builds a new one. It is rejected
// while a batch is running.
func (s *Simulation) Configure(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if s.runningLocked() {
		s.log.Debug().Msg("configure rejected: batch in progress")
		return ErrBatchInProgress
	}

	old := s.params
	s.params = params
	if err := s.build(); err != nil {
		s.params = old
		return err
	}
	s.last = nil
	return nil
}

// SetSpeed changes the animation speed multiplier. It is not a board
// parameter, so it is accepted mid-batch and applies to every tween and
// delay started afterwards.
func (s *Simulation) SetSpeed(speed float64) error {
	if err := validateSpeed(speed); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.timing.Speed = speed
	if s.batch != nil {
		s.batch.SetSpeed(speed)
	}
	return nil
}

// Drop starts a batch of Params.Balls balls. A drop while another batch is
// in flight is rejected and leaves every count untouched.
func (s *Simulation) Drop() (*anim.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.runningLocked() {
		s.log.Warn().Int("remaining", s.batch.Remaining()).Msg("drop rejected: batch in progress")
		return nil, ErrBatchInProgress
	}

	bt, err := anim.NewBatch(s.board, s.params.Balls, s.timing, s.rng, s.sink)
	if err != nil {
		return nil, err
	}
	bt.Start()

	s.batch = bt
	s.last = bt
	s.drops++
	s.log.Info().
		Int("drop", s.drops).
		Int("balls", s.params.Balls).
		Int("levels", s.params.Levels).
		Msg("batch started")
	return bt, nil
}

// Advance moves the running batch forward by dt and reports whether the
// simulation is idle afterwards.
func (s *Simulation) Advance(dt time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(dt)
}

func (s *Simulation) advanceLocked(dt time.Duration) bool {
	if s.batch == nil {
		return true
	}
	if !s.batch.Advance(dt) {
		return false
	}

	if s.batch.Completed() {
		s.log.Info().
			Int("drop", s.drops).
			Dur("elapsed", s.batch.Elapsed()).
			Ints("counts", s.board.Counts()).
			Msg("batch completed")
	}
	s.batch = nil
	return true
}

// Run drives the current batch in real time, one Advance per frame, until it
// completes or ctx is done.
func (s *Simulation) Run(ctx context.Context, frame time.Duration) error {
	if frame <= 0 {
		return fmt.Errorf("frame must be positive, got %v", frame)
	}

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		if !s.Running() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if s.Advance(dt) {
				return nil
			}
		}
	}
}

// RunInstant drives the current batch on a virtual clock, advancing by frame
// per step without sleeping. A zero frame is only useful with zero timings.
func (s *Simulation) RunInstant(ctx context.Context, frame time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if s.Advance(frame) {
			return nil
		}
	}
}

func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Simulation) runningLocked() bool {
	return s.batch != nil && !s.batch.Finished()
}

// ControlsEnabled reports whether board parameters may be changed.
func (s *Simulation) ControlsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.destroyed && !s.runningLocked()
}

// Destroy cancels any running batch and retires the simulation. Updates
// still scheduled against the batch become no-ops and further drops fail.
func (s *Simulation) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batch != nil {
		s.batch.Cancel()
		s.log.Debug().Int("remaining", s.batch.Remaining()).Msg("batch canceled")
	}
	s.batch = nil
	s.last = nil
	s.destroyed = true
}

func (s *Simulation) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Simulation) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timing.Speed
}

func (s *Simulation) Seed() int64 { return s.seed }

// Board returns the current board. Callers must not mutate it while a batch
// is running.
func (s *Simulation) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Batch returns the running batch, or nil when idle.
func (s *Simulation) Batch() *anim.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

// Result snapshots the board as it stands now.
func (s *Simulation) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.board
	r := &Result{
		Params:     s.params,
		Seed:       s.seed,
		Speed:      s.timing.Speed,
		Scale:      b.Scale(),
		Degenerate: b.Degenerate(),
		Bins:       make([]BinResult, 0, b.Levels()),
		Pegs:       b.Pegs(),
		ChiSquare:  prob.ChiSquare(b.Counts(), b.Expected()),
	}
	if s.last != nil {
		r.Elapsed = s.last.Elapsed()
	}
	for _, bin := range b.Bins() {
		r.Bins = append(r.Bins, BinResult{
			Index:         bin.Index,
			Count:         bin.Count,
			Expected:      bin.Expected,
			ExpectedCount: bin.Expected * float64(s.params.Balls),
		})
	}
	return r
}
