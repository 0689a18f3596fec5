package anim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/galtonsim/internal/board"
	"github.com/tanema/gween/ease"
)

type scripted struct {
	draws []float64
	i     int
}

func (s *scripted) Float64() float64 {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

func newBoard(t *testing.T, levels int, p float64) *board.Board {
	t.Helper()
	b, err := board.New(levels, p, board.DefaultLayout())
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	return b
}

func testTiming() Timing {
	tm := DefaultTiming()
	tm.PegInterval = 100 * time.Millisecond
	tm.LandingDuration = 100 * time.Millisecond
	tm.BallInterval = time.Second
	return tm
}

func TestTweenEasing(t *testing.T) {
	tests := []struct {
		name string
		fn   Easing
		half float64
	}{
		{"linear", ease.Linear, 0.5},
		{"out quad", ease.OutQuad, 0.75},
		{"in quad", ease.InQuad, 0.25},
	}

	for _, tt := range tests {
		tw := NewTween(0, 1, 100*time.Millisecond, tt.fn)
		if v := tw.Value(); v != 0 {
			t.Errorf("%s: start = %f, want 0", tt.name, v)
		}
		v, _, _ := tw.Advance(50 * time.Millisecond)
		if math.Abs(v-tt.half) > 1e-6 {
			t.Errorf("%s: halfway = %f, want %f", tt.name, v, tt.half)
		}
		if v, _, done := tw.Advance(50 * time.Millisecond); !done || v != 1 {
			t.Errorf("%s: end = %f done=%v", tt.name, v, done)
		}
	}
}

func TestTween(t *testing.T) {
	tw := NewTween(0.1, 0.3, 100*time.Millisecond, ease.Linear)

	v, rest, done := tw.Advance(50 * time.Millisecond)
	if done || rest != 0 || math.Abs(v-0.2) > 1e-6 {
		t.Errorf("halfway: v=%f rest=%v done=%v", v, rest, done)
	}

	v, rest, done = tw.Advance(70 * time.Millisecond)
	if !done || v != 0.3 || rest != 20*time.Millisecond {
		t.Errorf("end: v=%v rest=%v done=%v", v, rest, done)
	}
	if tw.Value() != 0.3 || !tw.Done() {
		t.Error("finished tween must hold its target")
	}
}

func TestTweenZeroDuration(t *testing.T) {
	tw := NewTween(1, 5, 0, nil)
	v, _, done := tw.Advance(0)
	if !done || v != 5 {
		t.Errorf("zero duration: v=%f done=%v", v, done)
	}
}

func TestNewBatchNoBalls(t *testing.T) {
	b := newBoard(t, 3, 0.5)
	if _, err := NewBatch(b, 0, testTiming(), rand.New(rand.NewSource(1)), nil); err != ErrNoBalls {
		t.Errorf("expected ErrNoBalls, got %v", err)
	}
}

func TestSingleBallSequence(t *testing.T) {
	b := newBoard(t, 3, 0.5)
	rec := NewRecorder()
	// right then left: columns 2 -> 3 -> 2, bin 1
	bt, err := NewBatch(b, 1, testTiming(), &scripted{draws: []float64{0.1, 0.9}}, rec)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}

	if bt.Advance(50 * time.Millisecond) {
		t.Fatal("finished too early")
	}
	ball := bt.Ball(0)
	if ball.State() != Dropping || ball.Row() != 0 {
		t.Fatalf("after 50ms: state=%v row=%d", ball.State(), ball.Row())
	}
	if rec.Started != 1 {
		t.Errorf("expected BatchStarted once, got %d", rec.Started)
	}

	bt.Advance(50 * time.Millisecond)
	if ball.Row() != 1 {
		t.Fatalf("after 100ms: row=%d, want 1", ball.Row())
	}
	if r := rec.Pegs[[2]int{1, 3}]; r != 1 {
		t.Errorf("peg (1,3) ratio = %f, want 1", r)
	}
	if x, y := ball.Position(); x != 65 || y != 40 {
		t.Errorf("position at row 1 = (%f, %f), want (65, 40)", x, y)
	}

	bt.Advance(100 * time.Millisecond)
	if ball.State() != Landing {
		t.Fatalf("after 200ms: state=%v, want landing", ball.State())
	}
	if b.Bin(1).Count != 1 {
		t.Errorf("bin 1 count = %d, want 1", b.Bin(1).Count)
	}

	if !bt.Advance(100 * time.Millisecond) {
		t.Fatal("batch should be complete after landing")
	}
	if ball.State() != Disposed {
		t.Errorf("state = %v, want disposed", ball.State())
	}
	if rec.Completed != 1 {
		t.Errorf("expected BatchCompleted once, got %d", rec.Completed)
	}
	if rec.Opacity[0] != 0 {
		t.Errorf("final opacity = %f, want 0", rec.Opacity[0])
	}
	if pos := rec.Positions[0]; pos[1] != 80 {
		t.Errorf("final y = %f, want 80 (bottom row + fall offset)", pos[1])
	}
	if h := rec.Bars[1]; math.Abs(h-b.Scale()) > 1e-9 {
		t.Errorf("bar 1 = %f, want %f", h, b.Scale())
	}

	select {
	case <-bt.Done():
	default:
		t.Error("Done must be closed after completion")
	}

	events := rec.Count()
	bt.Advance(time.Second)
	if rec.Count() != events {
		t.Error("completed batch must not emit further events")
	}
}

func TestInstantBatchInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for _, levels := range []int{1, 2, 6, 15} {
		b := newBoard(t, levels, 0.4)
		rec := NewRecorder()
		bt, err := NewBatch(b, 50, Instant(), rng, rec)
		if err != nil {
			t.Fatalf("NewBatch: %v", err)
		}

		if !bt.Advance(0) {
			t.Fatalf("L=%d: instant batch should finish in one step", levels)
		}
		if b.Total() != 50 {
			t.Errorf("L=%d: total = %d, want 50", levels, b.Total())
		}
		for i, path := range bt.Paths() {
			if path.Len() != levels-1 {
				t.Errorf("L=%d ball %d: path len %d", levels, i, path.Len())
			}
		}
		for i := 0; i < levels; i++ {
			if math.Abs(rec.Bars[i]-b.ActualHeight(i, 50)) > 1e-9 {
				t.Errorf("L=%d bin %d: bar %f, want %f", levels, i, rec.Bars[i], b.ActualHeight(i, 50))
			}
		}
	}
}

func TestSingleLevelBatch(t *testing.T) {
	b := newBoard(t, 1, 0.5)
	bt, _ := NewBatch(b, 8, testTiming(), rand.New(rand.NewSource(3)), nil)

	for !bt.Advance(16 * time.Millisecond) {
	}
	if b.Bin(0).Count != 8 {
		t.Errorf("bin 0 = %d, want 8", b.Bin(0).Count)
	}
}

func TestLevelTransitionsInOrder(t *testing.T) {
	b := newBoard(t, 8, 0.5)
	bt, _ := NewBatch(b, 20, testTiming(), rand.New(rand.NewSource(11)), nil)

	lastRow := make([]int, bt.Len())
	lastState := make([]BallState, bt.Len())

	for frames := 0; !bt.Advance(16 * time.Millisecond); frames++ {
		if frames > 100000 {
			t.Fatal("batch never finished")
		}
		for i := 0; i < bt.Len(); i++ {
			ball := bt.Ball(i)
			if ball.Row() < lastRow[i] || ball.Row() > lastRow[i]+1 {
				t.Fatalf("ball %d jumped from row %d to %d", i, lastRow[i], ball.Row())
			}
			if ball.State() < lastState[i] {
				t.Fatalf("ball %d went from %v back to %v", i, lastState[i], ball.State())
			}
			if ball.State() == Landing && ball.Row() != ball.Path.Len() {
				t.Fatalf("ball %d landing at row %d", i, ball.Row())
			}
			lastRow[i], lastState[i] = ball.Row(), ball.State()
		}
	}

	if b.Total() != 20 {
		t.Errorf("total = %d, want 20", b.Total())
	}
}

func TestStaggeredRelease(t *testing.T) {
	b := newBoard(t, 2, 0.5)
	// path, gap, path, gap, path
	rng := &scripted{draws: []float64{0.1, 0.5, 0.9, 0.25, 0.1}}
	bt, _ := NewBatch(b, 3, testTiming(), rng, nil)

	bt.Advance(400 * time.Millisecond)
	if bt.Ball(1).State() != Waiting {
		t.Fatalf("ball 1 released too early: %v", bt.Ball(1).State())
	}

	bt.Advance(100 * time.Millisecond)
	if bt.Ball(1).State() != Dropping {
		t.Fatalf("ball 1 should be released at 500ms, state %v", bt.Ball(1).State())
	}

	bt.Advance(249 * time.Millisecond)
	if bt.Ball(2).State() != Waiting {
		t.Fatalf("ball 2 released too early: %v", bt.Ball(2).State())
	}
	bt.Advance(time.Millisecond)
	if bt.Ball(2).State() == Waiting {
		t.Fatal("ball 2 should be released at 750ms")
	}

	if bt.Ball(0).Bin() != 1 || bt.Ball(1).Bin() != 0 || bt.Ball(2).Bin() != 1 {
		t.Errorf("bins = %d,%d,%d, want 1,0,1", bt.Ball(0).Bin(), bt.Ball(1).Bin(), bt.Ball(2).Bin())
	}
}

func TestSpeedScalesDurations(t *testing.T) {
	b := newBoard(t, 3, 0.5)
	tm := testTiming()
	tm.Speed = 2
	bt, _ := NewBatch(b, 1, tm, &scripted{draws: []float64{0.9, 0.9}}, nil)

	bt.Advance(25 * time.Millisecond)
	bt.SetSpeed(0.5)
	bt.Advance(25 * time.Millisecond)
	if bt.Ball(0).Row() != 1 {
		t.Fatalf("at speed 2 a 100ms move takes 50ms; row=%d", bt.Ball(0).Row())
	}

	bt.Advance(150 * time.Millisecond)
	if bt.Ball(0).Row() != 1 {
		t.Error("move started after SetSpeed(0.5) must take 200ms")
	}
	bt.Advance(50 * time.Millisecond)
	if bt.Ball(0).Row() != 2 {
		t.Errorf("row=%d, want 2", bt.Ball(0).Row())
	}
}

func TestCancel(t *testing.T) {
	b := newBoard(t, 4, 0.5)
	rec := NewRecorder()
	bt, _ := NewBatch(b, 5, testTiming(), rand.New(rand.NewSource(5)), rec)

	bt.Advance(120 * time.Millisecond)
	events := rec.Count()
	bt.Cancel()

	if !bt.Advance(time.Second) {
		t.Error("canceled batch must report finished")
	}
	if rec.Count() != events {
		t.Error("canceled batch must not emit events")
	}
	if bt.Completed() || !bt.Canceled() {
		t.Error("cancel must not mark the batch completed")
	}
	select {
	case <-bt.Done():
	default:
		t.Error("Done must be closed after cancel")
	}
}

func TestStartResetsBoard(t *testing.T) {
	b := newBoard(t, 3, 0.5)
	b.Hit(1, 1)
	b.Land(0)

	rec := NewRecorder()
	bt, _ := NewBatch(b, 1, testTiming(), rand.New(rand.NewSource(1)), rec)
	bt.Start()

	if b.Total() != 0 || b.Hits(1, 1) != 0 {
		t.Error("Start must reset the board")
	}
	if len(rec.Bars) != 3 {
		t.Errorf("expected every bar reset, got %d", len(rec.Bars))
	}
	if _, ok := rec.Pegs[[2]int{0, 2}]; ok {
		t.Error("top peg must not be recoloured")
	}
	if len(rec.Pegs) != 5 {
		t.Errorf("expected 5 peg resets, got %d", len(rec.Pegs))
	}
}

func TestBallStateString(t *testing.T) {
	if Landing.String() != "landing" || BallState(9).String() != "BallState(9)" {
		t.Error("unexpected BallState strings")
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a, c := NewRecorder(), NewRecorder()
	b := newBoard(t, 4, 0.5)
	bt, err := NewBatch(b, 5, Instant(), rand.New(rand.NewSource(3)), MultiSink{a, NopSink{}, c})
	if err != nil {
		t.Fatal(err)
	}
	bt.Start()
	if !bt.Advance(0) {
		t.Fatal("instant batch should finish in one advance")
	}

	if a.Count() == 0 || a.Count() != c.Count() {
		t.Errorf("sinks saw %d and %d events", a.Count(), c.Count())
	}
	if a.Started != 1 || c.Completed != 1 {
		t.Errorf("started %d, completed %d", a.Started, c.Completed)
	}
	for bin, h := range a.Bars {
		if c.Bars[bin] != h {
			t.Errorf("bin %d: %f vs %f", bin, h, c.Bars[bin])
		}
	}
}

func TestFuncsSink(t *testing.T) {
	landed := make(map[int]bool)
	var started, completed, bars int
	sink := Funcs{
		OnBallOpacity: func(ball int, v float64) {
			if v == 0 {
				landed[ball] = true
			}
		},
		OnBinBar:         func(int, float64) { bars++ },
		OnBatchStarted:   func() { started++ },
		OnBatchCompleted: func() { completed++ },
	}

	b := newBoard(t, 5, 0.5)
	bt, err := NewBatch(b, 7, Instant(), rand.New(rand.NewSource(8)), sink)
	if err != nil {
		t.Fatal(err)
	}
	bt.Start()
	if !bt.Advance(0) {
		t.Fatal("instant batch should finish in one advance")
	}

	if len(landed) != 7 {
		t.Errorf("saw %d balls fade out, want 7", len(landed))
	}
	if started != 1 || completed != 1 {
		t.Errorf("started %d, completed %d", started, completed)
	}
	if bars == 0 {
		t.Error("expected bin bar events")
	}
}
