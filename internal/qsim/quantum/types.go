package quantum

import (
	"fmt"
	"math/cmplx"

	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
)

// Bit represents a classical bit (0 or 1)
type Bit int

const (
	Zero Bit = 0
	One  Bit = 1
)

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "?"
	}
}

// Amplitudes holds the complex probability amplitudes of |0⟩ and |1⟩
type Amplitudes = linalg.Vector2

// QubitState represents the state vector of a single qubit
type QubitState struct {
	amplitudes Amplitudes
}

// NewQubitState prepares a qubit in the computational basis state for bit:
// |0⟩ = [1, 0] and |1⟩ = [0, 1]
func NewQubitState(bit Bit) (*QubitState, error) {
	switch bit {
	case Zero:
		return &QubitState{amplitudes: Amplitudes{1, 0}}, nil
	case One:
		return &QubitState{amplitudes: Amplitudes{0, 1}}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBit, int(bit))
	}
}

// State returns the amplitude vector
func (q *QubitState) State() Amplitudes {
	return q.amplitudes
}

// SetState replaces the amplitude vector. No normalization is applied.
func (q *QubitState) SetState(a Amplitudes) {
	q.amplitudes = a
}

// Norm returns |a0|² + |a1|², which is 1 for a normalized state
func (q *QubitState) Norm() float64 {
	a0 := cmplx.Abs(q.amplitudes[0])
	a1 := cmplx.Abs(q.amplitudes[1])
	return a0*a0 + a1*a1
}

// ParseBit converts the characters '0' and '1' into a Bit
func ParseBit(r rune) (Bit, error) {
	switch r {
	case '0':
		return Zero, nil
	case '1':
		return One, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBit, r)
	}
}

// ParseBits converts a string of '0'/'1' characters into bits
func ParseBits(s string) ([]Bit, error) {
	bits := make([]Bit, 0, len(s))
	for i, r := range s {
		bit, err := ParseBit(r)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		bits = append(bits, bit)
	}
	return bits, nil
}

// BitsToBytes converts a slice of Bits to a byte array
func BitsToBytes(bits []Bit) []byte {
	numBytes := (len(bits) + 7) / 8
	bytes := make([]byte, numBytes)

	for i, bit := range bits {
		if bit == One {
			byteIndex := i / 8
			bitIndex := uint(7 - (i % 8))
			bytes[byteIndex] |= (1 << bitIndex)
		}
	}

	return bytes
}
