package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/board"
	"github.com/san-kum/galtonsim/internal/descent"
)

// Params are the board parameters locked while a batch runs.
type Params struct {
	Levels    int     `json:"levels" yaml:"levels"`
	Balls     int     `json:"balls" yaml:"balls"`
	ProbRight float64 `json:"prob_right" yaml:"prob_right"`
}

func DefaultParams() Params {
	return Params{Levels: 7, Balls: 10, ProbRight: 0.5}
}

func (p Params) Validate() error {
	if p.Levels < 1 {
		return &ConfigurationError{Field: "levels", Value: p.Levels, Reason: "must be positive"}
	}
	if p.Balls < 1 {
		return &ConfigurationError{Field: "balls", Value: p.Balls, Reason: "must be positive"}
	}
	if math.IsNaN(p.ProbRight) || p.ProbRight < 0 || p.ProbRight > 1 {
		return &ConfigurationError{Field: "prob_right", Value: p.ProbRight, Reason: "must be within [0, 1]"}
	}
	return nil
}

func validateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return &ConfigurationError{Field: "speed", Value: speed, Reason: "must be positive"}
	}
	return nil
}

type Option func(*Simulation)

func WithLayout(l board.Layout) Option { return func(s *Simulation) { s.layout = l } }
func WithTiming(t anim.Timing) Option  { return func(s *Simulation) { s.timing = t } }
func WithSink(sink anim.Sink) Option   { return func(s *Simulation) { s.sink = sink } }
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSeed seeds a math/rand generator for paths and stagger delays.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSource injects the random source directly, for scripted tests.
func WithSource(src descent.Source) Option {
	return func(s *Simulation) { s.rng = src }
}

// BinResult is one bin of a finished run.
type BinResult struct {
	Index         int     `json:"index"`
	Count         int     `json:"count"`
	Expected      float64 `json:"expected"`
	ExpectedCount float64 `json:"expected_count"`
}

// Result is a snapshot of a board after a run.
type Result struct {
	Params     Params        `json:"params"`
	Seed       int64         `json:"seed"`
	Speed      float64       `json:"speed"`
	Scale      float64       `json:"scale"`
	Degenerate bool          `json:"degenerate"`
	Bins       []BinResult   `json:"bins"`
	Pegs       []board.Peg   `json:"pegs"`
	ChiSquare  float64       `json:"chi_square"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Counts returns the actual count of every bin.
func (r *Result) Counts() []int {
	out := make([]int, len(r.Bins))
	for i, b := range r.Bins {
		out[i] = b.Count
	}
	return out
}

// ExpectedCounts returns the expected number of balls in every bin.
func (r *Result) ExpectedCounts() []float64 {
	out := make([]float64, len(r.Bins))
	for i, b := range r.Bins {
		out[i] = b.ExpectedCount
	}
	return out
}

// Total is the number of balls landed.
func (r *Result) Total() int {
	n := 0
	for _, b := range r.Bins {
		n += b.Count
	}
	return n
}
