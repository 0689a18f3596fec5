// Package prob provides the binomial arithmetic behind the board's expected
// distribution bars.
//
//   - [Binomial]: probability mass, computed in log space
//   - [ScaleFactor]: converts probabilities into bar heights
//   - [ChiSquare]: compares a finished run against its expectation
package prob
