package quantum

import (
	"math/cmplx"
	"strings"

	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
)

// ProbabilityRule turns a joint amplitude into an outcome weight
type ProbabilityRule int

const (
	// RealSquareRule weighs an amplitude c as |Re(c²)|.
	// This is not the Born rule: for c = (1+i)/2 it yields 0 instead of 1/2.
	// It agrees with BornRule whenever every qubit's amplitudes share a phase
	// class, which holds for all states reachable with I, X, Y, Z and H.
	RealSquareRule ProbabilityRule = iota
	// BornRule weighs an amplitude c as |c|²
	BornRule
)

func (r ProbabilityRule) String() string {
	switch r {
	case RealSquareRule:
		return "real-square"
	case BornRule:
		return "born"
	default:
		return "unknown"
	}
}

// ParseProbabilityRule resolves the names produced by String, ignoring case
// and surrounding whitespace
func ParseProbabilityRule(name string) (ProbabilityRule, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "real-square", "":
		return RealSquareRule, true
	case "born":
		return BornRule, true
	default:
		return 0, false
	}
}

// Weight applies the rule to a single amplitude
func (r ProbabilityRule) Weight(c complex128) float64 {
	switch r {
	case BornRule:
		m := cmplx.Abs(c)
		return m * m
	default:
		sq := c * c
		w := real(sq)
		if w < 0 {
			return -w
		}
		return w
	}
}

// Amplitudes returns the joint state of the register: the Kronecker product of
// every qubit's vector in index order, so qubit 0 is the most significant bit
// of the outcome index.
func (c *Circuit) Amplitudes() []complex128 {
	vs := make([][]complex128, len(c.qubits))
	for i, q := range c.qubits {
		s := q.State()
		vs[i] = s[:]
	}
	return linalg.KronAll(vs...)
}

// Probabilities returns the 2^n outcome weights under the circuit's rule.
// The weights are not renormalized.
func (c *Circuit) Probabilities() []float64 {
	amps := c.Amplitudes()
	probs := make([]float64, len(amps))
	for i, a := range amps {
		probs[i] = c.rule.Weight(a)
	}
	return probs
}
