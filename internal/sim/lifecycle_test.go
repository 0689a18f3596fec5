package sim

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galtonsim/internal/anim"
)

// scriptedSource replays fixed draws, cycling when exhausted.
type scriptedSource struct {
	draws []float64
	i     int
}

func (s *scriptedSource) Float64() float64 {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

var _ = Describe("Simulation", func() {
	var (
		rec *anim.Recorder
		ctx context.Context
	)

	BeforeEach(func() {
		rec = anim.NewRecorder()
		ctx = context.Background()
	})

	Describe("a single-level board", func() {
		It("lands every ball in the only bin", func() {
			s, err := New(Params{Levels: 1, Balls: 12, ProbRight: 0.7}, WithSeed(1), WithTiming(anim.Instant()), WithSink(rec))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Drop()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.RunInstant(ctx, 0)).To(Succeed())

			r := s.Result()
			Expect(r.Counts()).To(Equal([]int{12}))
			Expect(r.Bins[0].Expected).To(BeNumerically("~", 1.0, 1e-12))
			Expect(rec.Completed).To(Equal(1))
		})
	})

	Describe("a board where every ball goes right", func() {
		It("only hits the rightmost diagonal", func() {
			const levels, balls = 5, 9
			s, err := New(Params{Levels: levels, Balls: balls, ProbRight: 1.0}, WithSeed(2), WithTiming(anim.Instant()))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Drop()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.RunInstant(ctx, 0)).To(Succeed())

			r := s.Result()
			Expect(r.Counts()).To(Equal([]int{0, 0, 0, 0, balls}))
			for _, peg := range r.Pegs {
				if peg.Row > 0 && peg.Col == levels-1+peg.Row {
					Expect(peg.Hits).To(Equal(balls), "peg (%d,%d)", peg.Row, peg.Col)
				} else {
					Expect(peg.Hits).To(BeZero(), "peg (%d,%d)", peg.Row, peg.Col)
				}
			}
		})
	})

	Describe("a scripted descent", func() {
		It("follows right then left into the middle bin", func() {
			s, err := New(Params{Levels: 3, Balls: 1, ProbRight: 0.5},
				WithSource(&scriptedSource{draws: []float64{0.2, 0.8}}),
				WithTiming(anim.Instant()),
				WithSink(rec),
			)
			Expect(err).NotTo(HaveOccurred())

			bt, err := s.Drop()
			Expect(err).NotTo(HaveOccurred())
			Expect(bt.Paths()[0].Column(1)).To(Equal(3))
			Expect(bt.Paths()[0].FinalColumn()).To(Equal(2))

			Expect(s.RunInstant(ctx, 0)).To(Succeed())
			Expect(s.Result().Counts()).To(Equal([]int{0, 1, 0}))
			Expect(rec.Pegs).To(HaveKeyWithValue([2]int{1, 3}, 1.0))
			Expect(rec.Pegs).To(HaveKeyWithValue([2]int{2, 2}, 1.0))
		})
	})

	Describe("batch lifecycle", func() {
		var (
			s  *Simulation
			tm anim.Timing
		)

		BeforeEach(func() {
			tm = anim.DefaultTiming()
			tm.PegInterval = 50 * time.Millisecond
			tm.LandingDuration = 50 * time.Millisecond
			tm.BallInterval = 50 * time.Millisecond

			var err error
			s, err = New(Params{Levels: 6, Balls: 15, ProbRight: 0.5}, WithSeed(3), WithTiming(tm), WithSink(rec))
			Expect(err).NotTo(HaveOccurred())
		})

		It("locks controls until every ball is disposed", func() {
			bt, err := s.Drop()
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Started).To(Equal(1))
			Expect(s.ControlsEnabled()).To(BeFalse())

			for !s.Advance(16 * time.Millisecond) {
				Expect(s.ControlsEnabled()).To(BeFalse())
			}

			Expect(bt.Remaining()).To(BeZero())
			Expect(s.ControlsEnabled()).To(BeTrue())
			Expect(rec.Completed).To(Equal(1))
			Eventually(bt.Done()).Should(BeClosed())
		})

		It("ignores a second drop without interleaving", func() {
			_, err := s.Drop()
			Expect(err).NotTo(HaveOccurred())
			s.Advance(200 * time.Millisecond)

			pegs := s.Board().Pegs()
			counts := s.Board().Counts()

			_, err = s.Drop()
			Expect(err).To(MatchError(ErrBatchInProgress))
			Expect(rec.Started).To(Equal(1))
			Expect(s.Board().Pegs()).To(Equal(pegs))
			Expect(s.Board().Counts()).To(Equal(counts))

			Expect(s.RunInstant(ctx, 16*time.Millisecond)).To(Succeed())
			Expect(s.Result().Total()).To(Equal(15))

			plain, err := New(Params{Levels: 6, Balls: 15, ProbRight: 0.5}, WithSeed(3), WithTiming(tm))
			Expect(err).NotTo(HaveOccurred())
			_, err = plain.Drop()
			Expect(err).NotTo(HaveOccurred())
			plain.Advance(200 * time.Millisecond)
			Expect(plain.RunInstant(ctx, 16*time.Millisecond)).To(Succeed())

			Expect(s.Board().Pegs()).To(Equal(plain.Board().Pegs()))
			Expect(s.Board().Counts()).To(Equal(plain.Board().Counts()))
		})

		It("makes stale updates no-ops after destroy", func() {
			bt, err := s.Drop()
			Expect(err).NotTo(HaveOccurred())
			s.Advance(100 * time.Millisecond)

			s.Destroy()
			seen := rec.Count()

			Expect(bt.Advance(time.Second)).To(BeTrue())
			Expect(rec.Count()).To(Equal(seen))
			Expect(bt.Canceled()).To(BeTrue())
		})
	})
})
