package quantum

import (
	"fmt"
	"math/rand"

	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
)

// MaxQubits bounds the register size; the joint state has 2^n amplitudes
const MaxQubits = 24

// Operation records a gate applied to one qubit
type Operation struct {
	Gate  Gate
	Qubit int
}

func (op Operation) String() string {
	return fmt.Sprintf("%s q[%d]", op.Gate.Mnemonic(), op.Qubit)
}

// Circuit is a register of independent qubits built from a classical bit string.
// A Circuit is owned by a single caller and is not safe for concurrent use.
type Circuit struct {
	bits       string
	qubits     []*QubitState
	operations []Operation
	rule       ProbabilityRule
	rng        *rand.Rand
}

// Option configures a Circuit
type Option func(*Circuit)

// WithProbabilityRule selects how joint amplitudes turn into outcome weights
func WithProbabilityRule(rule ProbabilityRule) Option {
	return func(c *Circuit) {
		c.rule = rule
	}
}

// WithRand sets the random source used by Measure and Sample.
// Without it the process-wide math/rand source is used.
func WithRand(r *rand.Rand) Option {
	return func(c *Circuit) {
		c.rng = r
	}
}

// NewCircuit builds a register with one qubit per character of bits.
// Character i becomes qubit i, prepared in |0⟩ or |1⟩.
func NewCircuit(bits string, opts ...Option) (*Circuit, error) {
	parsed, err := ParseBits(bits)
	if err != nil {
		return nil, err
	}

	if len(parsed) == 0 {
		return nil, ErrEmptyRegister
	}

	if len(parsed) > MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits requested, limit is %d", ErrRegisterTooLarge, len(parsed), MaxQubits)
	}

	c := &Circuit{
		bits:       bits,
		qubits:     make([]*QubitState, len(parsed)),
		operations: make([]Operation, 0),
		rule:       RealSquareRule,
	}

	for i, bit := range parsed {
		q, err := NewQubitState(bit)
		if err != nil {
			return nil, err
		}
		c.qubits[i] = q
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BitString returns the bit string the circuit was built from
func (c *Circuit) BitString() string {
	return c.bits
}

// NumQubits returns the register size
func (c *Circuit) NumQubits() int {
	return len(c.qubits)
}

// Rule returns the probability rule in use
func (c *Circuit) Rule() ProbabilityRule {
	return c.rule
}

// Operations returns a copy of the applied gate history
func (c *Circuit) Operations() []Operation {
	ops := make([]Operation, len(c.operations))
	copy(ops, c.operations)
	return ops
}

// State returns the amplitude vector of one qubit
func (c *Circuit) State(qubit int) (Amplitudes, error) {
	if err := c.checkIndex(qubit); err != nil {
		return Amplitudes{}, err
	}
	return c.qubits[qubit].State(), nil
}

// Identity applies the identity gate
func (c *Circuit) Identity(qubit int) error {
	return c.Apply(Identity, qubit)
}

// X applies the Pauli-X gate
func (c *Circuit) X(qubit int) error {
	return c.Apply(PauliX, qubit)
}

// Y applies the Pauli-Y gate
func (c *Circuit) Y(qubit int) error {
	return c.Apply(PauliY, qubit)
}

// Z applies the Pauli-Z gate
func (c *Circuit) Z(qubit int) error {
	return c.Apply(PauliZ, qubit)
}

// H applies the Hadamard gate
func (c *Circuit) H(qubit int) error {
	return c.Apply(Hadamard, qubit)
}

// S applies the S phase gate
func (c *Circuit) S(qubit int) error {
	return c.Apply(PhaseS, qubit)
}

// T applies the T phase gate
func (c *Circuit) T(qubit int) error {
	return c.Apply(PhaseT, qubit)
}

// Apply replaces the state of qubit with g · state. No other qubit is touched.
func (c *Circuit) Apply(g Gate, qubit int) error {
	if !g.valid() {
		return ErrUnknownGate
	}
	if err := c.checkIndex(qubit); err != nil {
		return err
	}

	c.applyMatrix(g.matrix, qubit)
	c.operations = append(c.operations, Operation{Gate: g, Qubit: qubit})
	return nil
}

// applyMatrix is the only place qubit state is transformed.
// m must be unitary; nothing re-normalizes afterwards.
func (c *Circuit) applyMatrix(m linalg.Matrix2, qubit int) {
	q := c.qubits[qubit]
	q.SetState(linalg.MulVec(m, q.State()))
}

func (c *Circuit) checkIndex(qubit int) error {
	if qubit < 0 || qubit >= len(c.qubits) {
		return fmt.Errorf("%w: index %d, register has %d qubits", ErrQubitOutOfRange, qubit, len(c.qubits))
	}
	return nil
}

func (c *Circuit) uniform() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}
