package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
)

// Gate is a named single-qubit unitary.
// Gates can only be built inside this package, so every Gate a caller holds is
// one of the vetted constants below.
type Gate struct {
	name     string
	mnemonic string
	matrix   linalg.Matrix2
}

// Name returns the human readable gate name
func (g Gate) Name() string {
	return g.name
}

// Mnemonic returns the OpenQASM 2.0 instruction for the gate
func (g Gate) Mnemonic() string {
	return g.mnemonic
}

// Matrix returns a copy of the gate's 2x2 matrix
func (g Gate) Matrix() linalg.Matrix2 {
	return g.matrix
}

func (g Gate) String() string {
	return g.name
}

func (g Gate) valid() bool {
	return g.name != ""
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

var (
	// Identity leaves the state unchanged
	Identity = Gate{"Identity", "id", linalg.Matrix2{
		{1, 0},
		{0, 1},
	}}

	// PauliX flips |0⟩ and |1⟩
	PauliX = Gate{"Pauli-X", "x", linalg.Matrix2{
		{0, 1},
		{1, 0},
	}}

	// PauliY flips the bit with a phase: |0⟩ → i|1⟩, |1⟩ → -i|0⟩
	PauliY = Gate{"Pauli-Y", "y", linalg.Matrix2{
		{0, -1i},
		{1i, 0},
	}}

	// PauliZ flips the phase of |1⟩
	PauliZ = Gate{"Pauli-Z", "z", linalg.Matrix2{
		{1, 0},
		{0, -1},
	}}

	// Hadamard maps basis states to uniform superpositions
	Hadamard = Gate{"Hadamard", "h", linalg.Matrix2{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	}}

	// PhaseS applies a quarter turn phase to |1⟩
	PhaseS = Gate{"Phase-S", "s", linalg.Matrix2{
		{1, 0},
		{0, 1i},
	}}

	// PhaseT applies an eighth turn phase to |1⟩
	PhaseT = Gate{"Phase-T", "t", linalg.Matrix2{
		{1, 0},
		{0, cmplx.Exp(complex(0, math.Pi/4))},
	}}
)

// Gates lists every supported gate in a stable order
func Gates() []Gate {
	return []Gate{Identity, PauliX, PauliY, PauliZ, Hadamard, PhaseS, PhaseT}
}

var gateAliases = map[string]Gate{
	"i":        Identity,
	"id":       Identity,
	"identity": Identity,
	"x":        PauliX,
	"pauli-x":  PauliX,
	"not":      PauliX,
	"y":        PauliY,
	"pauli-y":  PauliY,
	"z":        PauliZ,
	"pauli-z":  PauliZ,
	"h":        Hadamard,
	"hadamard": Hadamard,
	"s":        PhaseS,
	"phase-s":  PhaseS,
	"t":        PhaseT,
	"phase-t":  PhaseT,
}

// LookupGate resolves a case-insensitive gate name or alias
func LookupGate(name string) (Gate, error) {
	g, ok := gateAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Gate{}, fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	return g, nil
}
