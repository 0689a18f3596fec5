package anim

import (
	"fmt"

	"github.com/san-kum/galtonsim/internal/descent"
)

// BallState is a ball's position in its playback state machine.
type BallState int

const (
	Waiting BallState = iota
	Dropping
	Landing
	Disposed
)

func (s BallState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Dropping:
		return "dropping"
	case Landing:
		return "landing"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("BallState(%d)", int(s))
	}
}

// Ball is the playback of one precomputed path.
type Ball struct {
	ID   int
	Path descent.Path

	state   BallState
	row     int
	x, y    float64
	opacity float64

	moveX, moveY *Tween
	fall, fade   *Tween
	bar          *Tween
}

func (b *Ball) State() BallState { return b.state }

// Row is the last row the ball has fully reached.
func (b *Ball) Row() int { return b.row }

func (b *Ball) Position() (x, y float64) { return b.x, b.y }
func (b *Ball) Opacity() float64         { return b.opacity }

// Bin is the bin the ball lands in.
func (b *Ball) Bin() int { return b.Path.Bin() }
