package anim

import "sync"

// Sink receives every visual change a batch produces. Implementations are
// called from whichever goroutine advances the batch.
type Sink interface {
	PegColor(row, col int, hitRatio float64)
	BinBar(bin int, height float64)
	BallPosition(ball int, x, y float64)
	BallOpacity(ball int, opacity float64)
	BatchStarted()
	BatchCompleted()
}

type NopSink struct{}

func (NopSink) PegColor(int, int, float64)         {}
func (NopSink) BinBar(int, float64)                {}
func (NopSink) BallPosition(int, float64, float64) {}
func (NopSink) BallOpacity(int, float64)           {}
func (NopSink) BatchStarted()                      {}
func (NopSink) BatchCompleted()                    {}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) PegColor(row, col int, r float64) {
	for _, s := range m {
		s.PegColor(row, col, r)
	}
}

func (m MultiSink) BinBar(bin int, h float64) {
	for _, s := range m {
		s.BinBar(bin, h)
	}
}

func (m MultiSink) BallPosition(ball int, x, y float64) {
	for _, s := range m {
		s.BallPosition(ball, x, y)
	}
}

func (m MultiSink) BallOpacity(ball int, v float64) {
	for _, s := range m {
		s.BallOpacity(ball, v)
	}
}

func (m MultiSink) BatchStarted() {
	for _, s := range m {
		s.BatchStarted()
	}
}

func (m MultiSink) BatchCompleted() {
	for _, s := range m {
		s.BatchCompleted()
	}
}

// Funcs adapts plain functions to Sink. Nil fields drop their event.
type Funcs struct {
	OnPegColor       func(row, col int, hitRatio float64)
	OnBinBar         func(bin int, height float64)
	OnBallPosition   func(ball int, x, y float64)
	OnBallOpacity    func(ball int, opacity float64)
	OnBatchStarted   func()
	OnBatchCompleted func()
}

func (f Funcs) PegColor(row, col int, r float64) {
	if f.OnPegColor != nil {
		f.OnPegColor(row, col, r)
	}
}

func (f Funcs) BinBar(bin int, h float64) {
	if f.OnBinBar != nil {
		f.OnBinBar(bin, h)
	}
}

func (f Funcs) BallPosition(ball int, x, y float64) {
	if f.OnBallPosition != nil {
		f.OnBallPosition(ball, x, y)
	}
}

func (f Funcs) BallOpacity(ball int, v float64) {
	if f.OnBallOpacity != nil {
		f.OnBallOpacity(ball, v)
	}
}

func (f Funcs) BatchStarted() {
	if f.OnBatchStarted != nil {
		f.OnBatchStarted()
	}
}

func (f Funcs) BatchCompleted() {
	if f.OnBatchCompleted != nil {
		f.OnBatchCompleted()
	}
}

// Recorder keeps the latest value of every event target plus event counts.
type Recorder struct {
	mu sync.Mutex

	Pegs      map[[2]int]float64
	Bars      map[int]float64
	Positions map[int][2]float64
	Opacity   map[int]float64
	Started   int
	Completed int
	Events    int
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	r.reset()
	return r
}

func (r *Recorder) reset() {
	r.Pegs = make(map[[2]int]float64)
	r.Bars = make(map[int]float64)
	r.Positions = make(map[int][2]float64)
	r.Opacity = make(map[int]float64)
}

func (r *Recorder) PegColor(row, col int, ratio float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pegs[[2]int{row, col}] = ratio
	r.Events++
}

func (r *Recorder) BinBar(bin int, h float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Bars[bin] = h
	r.Events++
}

func (r *Recorder) BallPosition(ball int, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Positions[ball] = [2]float64{x, y}
	r.Events++
}

func (r *Recorder) BallOpacity(ball int, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Opacity[ball] = v
	r.Events++
}

func (r *Recorder) BatchStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started++
	r.Events++
}

func (r *Recorder) BatchCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completed++
	r.Events++
}

// Count returns the number of events seen so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Events
}
