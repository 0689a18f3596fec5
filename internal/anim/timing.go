package anim

import "time"

const (
	DefaultPegInterval     = time.Second
	DefaultLandingDuration = time.Second
	DefaultBallInterval    = time.Second
	DefaultFallOffset      = 20.0
	DefaultStartOpacity    = 0.9
)

// Timing holds the base durations of a batch. Every duration is divided by
// Speed at the moment the corresponding tween or delay starts.
type Timing struct {
	PegInterval     time.Duration
	LandingDuration time.Duration
	BallInterval    time.Duration
	FallOffset      float64
	StartOpacity    float64
	Speed           float64
}

func DefaultTiming() Timing {
	return Timing{
		PegInterval:     DefaultPegInterval,
		LandingDuration: DefaultLandingDuration,
		BallInterval:    DefaultBallInterval,
		FallOffset:      DefaultFallOffset,
		StartOpacity:    DefaultStartOpacity,
		Speed:           1,
	}
}

// Instant is a timing with every duration zero; a batch using it completes
// in a single Advance.
func Instant() Timing {
	t := DefaultTiming()
	t.PegInterval = 0
	t.LandingDuration = 0
	t.BallInterval = 0
	return t
}

func (t Timing) scaled(d time.Duration) time.Duration {
	if t.Speed <= 0 {
		return d
	}
	return time.Duration(float64(d) / t.Speed)
}
