package prob

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinModeProbability is the floor applied to the mode probability before it
// is used as a divisor.
const MinModeProbability = 1e-12

// ErrDegenerateDistribution reports that the mode probability underflowed and
// the scale factor was clamped.
var ErrDegenerateDistribution = errors.New("prob: degenerate distribution (mode probability clamped)")

// Binomial returns P(K=k) for K ~ Binomial(n, p).
func Binomial(n, k int, p float64) float64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	switch p {
	case 0:
		if k == 0 {
			return 1
		}
		return 0
	case 1:
		if k == n {
			return 1
		}
		return 0
	}

	v := distuv.Binomial{N: float64(n), P: p}.Prob(float64(k))
	if v > 1 {
		return 1
	}
	return v
}

// Mode is the most probable outcome of Binomial(n, p), rounded the same way
// the display scale expects.
func Mode(n int, p float64) int {
	return int(math.Round(float64(n) * p))
}

// Distribution returns the n+1 probability masses of Binomial(n, p).
func Distribution(n int, p float64) []float64 {
	if n < 0 {
		return nil
	}
	d := make([]float64, n+1)
	for k := range d {
		d[k] = Binomial(n, k, p)
	}
	return d
}

func Mean(n int, p float64) float64 { return distuv.Binomial{N: float64(n), P: p}.Mean() }

func Variance(n int, p float64) float64 { return distuv.Binomial{N: float64(n), P: p}.Variance() }

// ScaleFactor converts probabilities into bar heights so that the mode bar
// fills half of graphHeight. The result is always positive and finite; a
// non-nil error means the mode probability was clamped to MinModeProbability.
func ScaleFactor(levels int, p, graphHeight float64) (float64, error) {
	n := levels - 1
	maxProb := Binomial(n, Mode(n, p), p)

	var err error
	if math.IsNaN(maxProb) || maxProb < MinModeProbability {
		maxProb = MinModeProbability
		err = ErrDegenerateDistribution
	}

	scale := 0.5 * graphHeight / maxProb
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		return 1, ErrDegenerateDistribution
	}
	return scale, err
}

// ChiSquare is Pearson's goodness-of-fit statistic for observed counts against
// expected probabilities. Bins with zero expectation are skipped.
func ChiSquare(observed []int, expected []float64) float64 {
	total := 0
	for _, o := range observed {
		total += o
	}
	if total == 0 {
		return 0
	}

	obs := make([]float64, 0, len(observed))
	exp := make([]float64, 0, len(observed))
	for i, o := range observed {
		if i >= len(expected) {
			break
		}
		e := expected[i] * float64(total)
		if e <= 0 {
			continue
		}
		obs = append(obs, float64(o))
		exp = append(exp, e)
	}
	return stat.ChiSquare(obs, exp)
}
