package quantum

import (
	"fmt"
	"math"

	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
)

// DistributionTolerance is how far outcome weights may sum away from 1
const DistributionTolerance = 1e-9

// Measure draws one classical outcome, weighted by Probabilities, and returns
// it as an n-digit bit string. Qubit states are left untouched, so repeated
// calls are independent draws from the same distribution.
func (c *Circuit) Measure() (string, error) {
	probs := c.Probabilities()
	if err := ValidateDistribution(probs); err != nil {
		return "", err
	}

	idx, err := linalg.Categorical(probs, c.uniform())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDistribution, err)
	}

	return FormatOutcome(idx, len(c.qubits)), nil
}

// MeasureShots performs shots independent measurements and returns the
// outcomes in draw order. The distribution is derived once for all shots.
func (c *Circuit) MeasureShots(shots int) ([]string, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShots, shots)
	}

	probs := c.Probabilities()
	if err := ValidateDistribution(probs); err != nil {
		return nil, err
	}

	outcomes := make([]string, shots)
	for i := range outcomes {
		idx, err := linalg.Categorical(probs, c.uniform())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDistribution, err)
		}
		outcomes[i] = FormatOutcome(idx, len(c.qubits))
	}

	return outcomes, nil
}

// Sample performs shots independent measurements and returns outcome counts
func (c *Circuit) Sample(shots int) (map[string]int, error) {
	outcomes, err := c.MeasureShots(shots)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, o := range outcomes {
		counts[o]++
	}

	return counts, nil
}

// ValidateDistribution checks that weights are nonnegative, finite and sum to 1
// within DistributionTolerance
func ValidateDistribution(weights []float64) error {
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %v at outcome %d", ErrMalformedDistribution, w, i)
		}
	}

	total := linalg.Sum(weights)
	if math.Abs(total-1) > DistributionTolerance {
		return fmt.Errorf("%w: weights sum to %.12f", ErrMalformedDistribution, total)
	}

	return nil
}

// FormatOutcome renders outcome index idx as a zero-padded n-bit string
func FormatOutcome(idx, n int) string {
	return fmt.Sprintf("%0*b", n, idx)
}

// Outcomes enumerates all 2^n basis outcomes in index order
func Outcomes(n int) []string {
	outcomes := make([]string, 1<<n)
	for i := range outcomes {
		outcomes[i] = FormatOutcome(i, n)
	}
	return outcomes
}
