// Package stats reduces a sample list to its mean and a two-sided Student-t
// confidence interval.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientSamples is matched by every InsufficientSamplesError.
	ErrInsufficientSamples = errors.New("insufficient samples")

	// ErrInvalidConfidenceLevel is returned for levels outside (0, 1).
	ErrInvalidConfidenceLevel = errors.New("confidence level must be in (0, 1)")
)

// InsufficientSamplesError reports a sample list too short for an interval.
// At n = 1 the t distribution has no degrees of freedom left.
type InsufficientSamplesError struct {
	N int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("%v: have %d, need at least 2", ErrInsufficientSamples, e.N)
}

func (e *InsufficientSamplesError) Is(target error) bool {
	return target == ErrInsufficientSamples
}

// Summary is the mean of a sample list and its confidence interval.
type Summary struct {
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	N     int     `json:"n"`
}

// Margin returns the half-width of the interval.
func (s Summary) Margin() float64 {
	return s.Upper - s.Mean
}

// Summarize returns the mean of samples and the interval
// mean ± t(level, n-1) * sd / sqrt(n), with sd the sample standard deviation.
func Summarize(samples []float64, level float64) (Summary, error) {
	if !(level > 0 && level < 1) {
		return Summary{}, fmt.Errorf("%w, got %v", ErrInvalidConfidenceLevel, level)
	}
	n := len(samples)
	if n < 2 {
		return Summary{}, &InsufficientSamplesError{N: n}
	}

	mean := stat.Mean(samples, nil)
	stdErr := stat.StdDev(samples, nil) / math.Sqrt(float64(n))

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	margin := t.Quantile(1-(1-level)/2) * stdErr

	return Summary{Mean: mean, Lower: mean - margin, Upper: mean + margin, N: n}, nil
}

// CriticalValue returns the two-tailed t critical value for level and df degrees of freedom.
func CriticalValue(level float64, df int) (float64, error) {
	if !(level > 0 && level < 1) {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidConfidenceLevel, level)
	}
	if df < 1 {
		return 0, &InsufficientSamplesError{N: df + 1}
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile(1 - (1-level)/2), nil
}
