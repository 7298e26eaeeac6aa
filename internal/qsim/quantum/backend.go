package quantum

import (
	"fmt"
)

// Backend executes circuits and reports measurement statistics
type Backend interface {
	// Name returns the name of the backend
	Name() string

	// Run measures the circuit shots times
	Run(c *Circuit, shots int) (*RunResult, error)

	// IsSimulator returns true if this is a simulator, false for real hardware
	IsSimulator() bool
}

// RunResult is the outcome of executing a circuit on a backend
type RunResult struct {
	Backend       string
	Shots         int
	Counts        map[string]int
	Empirical     map[string]float64
	Probabilities []float64
	MostFrequent  string
	QASM          string
}

// StateVectorBackend runs circuits on the in-process state-vector engine
type StateVectorBackend struct {
	name string
}

// NewStateVectorBackend creates a new local simulator backend
func NewStateVectorBackend() *StateVectorBackend {
	return &StateVectorBackend{
		name: "StateVectorSimulator",
	}
}

// Name returns the name of the simulator backend
func (s *StateVectorBackend) Name() string {
	return s.name
}

// Run samples the circuit and bundles exact and empirical distributions
func (s *StateVectorBackend) Run(c *Circuit, shots int) (*RunResult, error) {
	if c == nil {
		return nil, fmt.Errorf("circuit is nil")
	}

	counts, err := c.Sample(shots)
	if err != nil {
		return nil, fmt.Errorf("sampling failed: %w", err)
	}

	return &RunResult{
		Backend:       s.name,
		Shots:         shots,
		Counts:        counts,
		Empirical:     CountsToProbabilities(counts),
		Probabilities: c.Probabilities(),
		MostFrequent:  MostFrequentOutcome(counts),
		QASM:          c.ToQASM(true),
	}, nil
}

// IsSimulator returns true since this is a simulator
func (s *StateVectorBackend) IsSimulator() bool {
	return true
}
