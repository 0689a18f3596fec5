package anim

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Easing is a gween easing equation: (elapsed, begin, change, duration).
type Easing = ease.TweenFunc

// Tween interpolates a single value from From to To over Duration. Elapsed
// time is tracked as a time.Duration so the leftover returned by Advance is
// exact.
type Tween struct {
	From     float64
	To       float64
	Duration time.Duration

	tw      *gween.Tween
	elapsed time.Duration
}

func NewTween(from, to float64, d time.Duration, fn Easing) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	return &Tween{
		From:     from,
		To:       to,
		Duration: d,
		tw:       gween.New(float32(from), float32(to), float32(d.Seconds()), fn),
	}
}

// Advance moves the tween forward by dt. Once progress reaches 1 it reports
// done, returns exactly To and hands back the unused part of dt.
func (t *Tween) Advance(dt time.Duration) (value float64, rest time.Duration, done bool) {
	t.elapsed += dt
	if t.elapsed >= t.Duration {
		return t.To, t.elapsed - t.Duration, true
	}
	v, _ := t.tw.Set(float32(t.elapsed.Seconds()))
	return float64(v), 0, false
}

// Value is the current interpolated value without advancing.
func (t *Tween) Value() float64 {
	if t.elapsed >= t.Duration {
		return t.To
	}
	v, _ := t.tw.Set(float32(t.elapsed.Seconds()))
	return float64(v)
}

func (t *Tween) Done() bool { return t.elapsed >= t.Duration }
