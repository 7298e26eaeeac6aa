package quantum

import (
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAmplitudesInDelta(t *testing.T, expected, actual Amplitudes) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, 0, cmplx.Abs(expected[i]-actual[i]), tolerance,
			"amplitude %d: expected %v, got %v", i, expected[i], actual[i])
	}
}

// TestNewCircuit tests construction from a bit string
func TestNewCircuit(t *testing.T) {
	c, err := NewCircuit("0110")
	require.NoError(t, err)

	assert.Equal(t, "0110", c.BitString())
	assert.Equal(t, 4, c.NumQubits())
	assert.Equal(t, RealSquareRule, c.Rule())
	assert.Empty(t, c.Operations())

	expected := []Amplitudes{{1, 0}, {0, 1}, {0, 1}, {1, 0}}
	for i, want := range expected {
		got, err := c.State(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "qubit %d", i)
	}
}

// TestNewCircuitErrors tests construction failures
func TestNewCircuitErrors(t *testing.T) {
	tests := []struct {
		name     string
		bits     string
		expected error
	}{
		{"Empty register", "", ErrEmptyRegister},
		{"Non-binary character", "01a", ErrInvalidBit},
		{"Digit two", "2", ErrInvalidBit},
		{"Too many qubits", strings.Repeat("0", MaxQubits+1), ErrRegisterTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCircuit(tt.bits)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

// TestGatePreservesNorm tests that every gate keeps normalized states normalized
func TestGatePreservesNorm(t *testing.T) {
	s := 1 / math.Sqrt2
	states := []Amplitudes{
		{1, 0},
		{0, 1},
		{complex(s, 0), complex(s, 0)},
		{0.6, 0.8i},
		{complex(0.5, 0.5), complex(0.5, -0.5)},
	}

	for _, g := range Gates() {
		for _, st := range states {
			c, err := NewCircuit("0")
			require.NoError(t, err)
			c.qubits[0].SetState(st)

			require.NoError(t, c.Apply(g, 0))
			assert.InDelta(t, 1.0, c.qubits[0].Norm(), tolerance, "%s on %v", g.Name(), st)
		}
	}
}

// TestIdentityIsNoOp tests that the identity gate leaves the state unchanged
func TestIdentityIsNoOp(t *testing.T) {
	c, err := NewCircuit("01")
	require.NoError(t, err)
	c.qubits[1].SetState(Amplitudes{0.6, 0.8i})

	require.NoError(t, c.Identity(0))
	require.NoError(t, c.Identity(1))

	q0, _ := c.State(0)
	q1, _ := c.State(1)
	assertAmplitudesInDelta(t, Amplitudes{1, 0}, q0)
	assertAmplitudesInDelta(t, Amplitudes{0.6, 0.8i}, q1)
}

// TestInvolutions tests that X, Y, Z and H undo themselves
func TestInvolutions(t *testing.T) {
	apply := map[string]func(*Circuit, int) error{
		"X": (*Circuit).X,
		"Y": (*Circuit).Y,
		"Z": (*Circuit).Z,
		"H": (*Circuit).H,
	}

	for name, fn := range apply {
		t.Run(name, func(t *testing.T) {
			for _, bits := range []string{"0", "1"} {
				c, err := NewCircuit(bits)
				require.NoError(t, err)
				before, _ := c.State(0)

				require.NoError(t, fn(c, 0))
				require.NoError(t, fn(c, 0))

				after, _ := c.State(0)
				assertAmplitudesInDelta(t, before, after)
			}
		})
	}
}

// TestGateEffects tests single applications against known results
func TestGateEffects(t *testing.T) {
	s := complex(1/math.Sqrt2, 0)

	tests := []struct {
		name     string
		bits     string
		apply    func(*Circuit) error
		expected Amplitudes
	}{
		{"X|0⟩ = |1⟩", "0", func(c *Circuit) error { return c.X(0) }, Amplitudes{0, 1}},
		{"X|1⟩ = |0⟩", "1", func(c *Circuit) error { return c.X(0) }, Amplitudes{1, 0}},
		{"Y|0⟩ = i|1⟩", "0", func(c *Circuit) error { return c.Y(0) }, Amplitudes{0, 1i}},
		{"Y|1⟩ = -i|0⟩", "1", func(c *Circuit) error { return c.Y(0) }, Amplitudes{-1i, 0}},
		{"Z|0⟩ = |0⟩", "0", func(c *Circuit) error { return c.Z(0) }, Amplitudes{1, 0}},
		{"Z|1⟩ = -|1⟩", "1", func(c *Circuit) error { return c.Z(0) }, Amplitudes{0, -1}},
		{"H|0⟩ = |+⟩", "0", func(c *Circuit) error { return c.H(0) }, Amplitudes{s, s}},
		{"H|1⟩ = |−⟩", "1", func(c *Circuit) error { return c.H(0) }, Amplitudes{s, -s}},
		{"S|1⟩ = i|1⟩", "1", func(c *Circuit) error { return c.S(0) }, Amplitudes{0, 1i}},
		{"T|1⟩ = e^{iπ/4}|1⟩", "1", func(c *Circuit) error { return c.T(0) }, Amplitudes{0, complex(1/math.Sqrt2, 1/math.Sqrt2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCircuit(tt.bits)
			require.NoError(t, err)
			require.NoError(t, tt.apply(c))

			got, _ := c.State(0)
			assertAmplitudesInDelta(t, tt.expected, got)
		})
	}
}

// TestApplyTouchesOneQubit tests that gates leave other qubits alone
func TestApplyTouchesOneQubit(t *testing.T) {
	c, err := NewCircuit("010")
	require.NoError(t, err)

	require.NoError(t, c.H(1))

	q0, _ := c.State(0)
	q2, _ := c.State(2)
	assert.Equal(t, Amplitudes{1, 0}, q0)
	assert.Equal(t, Amplitudes{1, 0}, q2)

	ops := c.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, Operation{Gate: Hadamard, Qubit: 1}, ops[0])
	assert.Equal(t, "h q[1]", ops[0].String())
}

// TestApplyErrors tests index and gate validation
func TestApplyErrors(t *testing.T) {
	c, err := NewCircuit("00")
	require.NoError(t, err)

	for _, idx := range []int{-1, 2, 100} {
		assert.ErrorIs(t, c.X(idx), ErrQubitOutOfRange, "index %d", idx)
	}

	_, err = c.State(5)
	assert.ErrorIs(t, err, ErrQubitOutOfRange)

	assert.ErrorIs(t, c.Apply(Gate{}, 0), ErrUnknownGate)

	// Failed calls leave no trace
	assert.Empty(t, c.Operations())
	q0, _ := c.State(0)
	assert.Equal(t, Amplitudes{1, 0}, q0)
}

// TestOperationsIsACopy tests that callers cannot rewrite history
func TestOperationsIsACopy(t *testing.T) {
	c, err := NewCircuit("0")
	require.NoError(t, err)
	require.NoError(t, c.X(0))

	ops := c.Operations()
	ops[0].Qubit = 9

	assert.Equal(t, 0, c.Operations()[0].Qubit)
}

// TestWithRand tests that a seeded source makes sampling reproducible
func TestWithRand(t *testing.T) {
	run := func() map[string]int {
		c, err := NewCircuit("000", WithRand(rand.New(rand.NewSource(7))))
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			require.NoError(t, c.H(i))
		}
		counts, err := c.Sample(200)
		require.NoError(t, err)
		return counts
	}

	assert.Equal(t, run(), run())
}

func BenchmarkApplyHadamard(b *testing.B) {
	c, _ := NewCircuit("0")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.H(0)
	}
}
