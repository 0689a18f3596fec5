package sim

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/san-kum/galtonsim/internal/anim"
	"github.com/san-kum/galtonsim/internal/board"
)

// Ensemble runs independent seeded simulations of the same parameters in
// parallel. Each run owns its own board, so nothing is shared between the
// goroutines.
type Ensemble struct {
	params    Params
	numRuns   int
	seedStart int64
	layout    board.Layout
	log       zerolog.Logger
}

func NewEnsemble(params Params, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		params:    params,
		numRuns:   numRuns,
		seedStart: seedStart,
		layout:    board.DefaultLayout(),
		log:       zerolog.Nop(),
	}
}

func (e *Ensemble) WithLogger(l zerolog.Logger) *Ensemble {
	e.log = l
	return e
}

// Run plays every run on a zero-duration timing and returns the results in
// seed order.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	if e.numRuns < 1 {
		return nil, &ConfigurationError{Field: "runs", Value: e.numRuns, Reason: "must be positive"}
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			s, err := New(e.params,
				WithSeed(seed),
				WithLayout(e.layout),
				WithTiming(anim.Instant()),
				WithLogger(e.log.With().Int64("seed", seed).Logger()),
			)
			if err != nil {
				errs[idx] = err
				return
			}

			if _, err := s.Drop(); err != nil {
				errs[idx] = err
				return
			}
			if err := s.RunInstant(ctx, 0); err != nil {
				errs[idx] = err
				return
			}
			results[idx] = s.Result()
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Aggregate sums bin counts across runs.
func Aggregate(results []*Result) []int {
	if len(results) == 0 {
		return nil
	}
	total := make([]int, len(results[0].Bins))
	for _, r := range results {
		for i, b := range r.Bins {
			if i < len(total) {
				total[i] += b.Count
			}
		}
	}
	return total
}
