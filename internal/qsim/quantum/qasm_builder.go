package quantum

import (
	"fmt"
	"sort"
	"strings"
)

// QASMBuilder builds OpenQASM 2.0 programs
type QASMBuilder struct {
	version      string
	includeStmt  string
	registers    []string
	gates        []string
	measurements []string
}

// NewQASMBuilder creates a new OpenQASM circuit builder
func NewQASMBuilder(numQubits int, numClassical int) *QASMBuilder {
	builder := &QASMBuilder{
		version:      "OPENQASM 2.0;",
		includeStmt:  "include \"qelib1.inc\";",
		registers:    make([]string, 0),
		gates:        make([]string, 0),
		measurements: make([]string, 0),
	}

	builder.registers = append(builder.registers,
		fmt.Sprintf("qreg q[%d];", numQubits),
		fmt.Sprintf("creg c[%d];", numClassical),
	)

	return builder
}

// AddGate adds a raw gate statement
func (b *QASMBuilder) AddGate(gate string) {
	b.gates = append(b.gates, gate)
}

// AddGateOn adds a single-qubit gate statement such as "h q[0];"
func (b *QASMBuilder) AddGateOn(mnemonic string, qubit int) {
	b.AddGate(fmt.Sprintf("%s q[%d];", mnemonic, qubit))
}

// AddMeasurement adds a measurement operation
func (b *QASMBuilder) AddMeasurement(qubit int, classical int) {
	b.measurements = append(b.measurements,
		fmt.Sprintf("measure q[%d] -> c[%d];", qubit, classical))
}

// Build generates the complete QASM circuit string
func (b *QASMBuilder) Build() string {
	var circuit strings.Builder

	circuit.WriteString(b.version + "\n")
	circuit.WriteString(b.includeStmt + "\n")
	circuit.WriteString("\n")

	for _, reg := range b.registers {
		circuit.WriteString(reg + "\n")
	}

	if len(b.gates) > 0 {
		circuit.WriteString("\n")
		for _, gate := range b.gates {
			circuit.WriteString(gate + "\n")
		}
	}

	if len(b.measurements) > 0 {
		circuit.WriteString("\n")
		for _, meas := range b.measurements {
			circuit.WriteString(meas + "\n")
		}
	}

	return circuit.String()
}

// ToQASM exports the circuit as OpenQASM 2.0. Qubits that start in |1⟩ are
// prepared with an x gate, followed by every applied operation in order.
// With measure set, each qubit is measured into the matching classical bit.
func (c *Circuit) ToQASM(measure bool) string {
	n := len(c.qubits)
	builder := NewQASMBuilder(n, n)

	for i, r := range c.bits {
		if r == '1' {
			builder.AddGateOn(PauliX.Mnemonic(), i)
		}
	}

	for _, op := range c.operations {
		builder.AddGateOn(op.Gate.Mnemonic(), op.Qubit)
	}

	if measure {
		for i := 0; i < n; i++ {
			builder.AddMeasurement(i, i)
		}
	}

	return builder.Build()
}

// MostFrequentOutcome returns the outcome with the highest count.
// Ties go to the lexicographically smallest outcome.
func MostFrequentOutcome(counts map[string]int) string {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)

	maxCount := 0
	maxOutcome := ""
	for _, outcome := range outcomes {
		if counts[outcome] > maxCount {
			maxCount = counts[outcome]
			maxOutcome = outcome
		}
	}

	return maxOutcome
}

// CountsToProbabilities calculates empirical probabilities from measurement counts
func CountsToProbabilities(counts map[string]int) map[string]float64 {
	totalShots := 0
	for _, count := range counts {
		totalShots += count
	}

	probabilities := make(map[string]float64)
	if totalShots == 0 {
		return probabilities
	}

	for outcome, count := range counts {
		probabilities[outcome] = float64(count) / float64(totalShots)
	}

	return probabilities
}
