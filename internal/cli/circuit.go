package cli

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// gateSpec is one --gate flag value, written as name:qubit (h:0, pauli-x:2)
type gateSpec struct {
	gate  quantum.Gate
	qubit int
}

func parseGateSpec(s string) (gateSpec, error) {
	name, index, ok := strings.Cut(s, ":")
	if !ok {
		return gateSpec{}, fmt.Errorf("gate %q: expected name:qubit", s)
	}

	gate, err := quantum.LookupGate(name)
	if err != nil {
		return gateSpec{}, err
	}

	qubit, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil {
		return gateSpec{}, fmt.Errorf("gate %q: invalid qubit index: %w", s, err)
	}

	return gateSpec{gate: gate, qubit: qubit}, nil
}

// circuitFlags are shared by commands that build a circuit
type circuitFlags struct {
	gates []string
	born  bool
	seed  int64
}

// build creates the register and applies every gate in order
func (f *circuitFlags) build(bits string) (*quantum.Circuit, error) {
	var opts []quantum.Option
	if f.born {
		opts = append(opts, quantum.WithProbabilityRule(quantum.BornRule))
	}
	if f.seed != 0 {
		opts = append(opts, quantum.WithRand(rand.New(rand.NewSource(f.seed))))
	}

	c, err := quantum.NewCircuit(bits, opts...)
	if err != nil {
		return nil, err
	}

	for _, raw := range f.gates {
		spec, err := parseGateSpec(raw)
		if err != nil {
			return nil, err
		}
		if err := c.Apply(spec.gate, spec.qubit); err != nil {
			return nil, fmt.Errorf("applying %s: %w", raw, err)
		}
	}

	return c, nil
}
