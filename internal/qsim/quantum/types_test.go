package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBitString tests the String method for Bit
func TestBitString(t *testing.T) {
	tests := []struct {
		name     string
		bit      Bit
		expected string
	}{
		{"Zero", Zero, "0"},
		{"One", One, "1"},
		{"Invalid bit", Bit(7), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.bit.String())
		})
	}
}

// TestNewQubitState tests preparation of basis states
func TestNewQubitState(t *testing.T) {
	tests := []struct {
		name     string
		bit      Bit
		expected Amplitudes
	}{
		{"Prepare |0⟩", Zero, Amplitudes{1, 0}},
		{"Prepare |1⟩", One, Amplitudes{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQubitState(tt.bit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q.State())
			assert.Equal(t, 1.0, q.Norm())
		})
	}

	t.Run("Invalid bit", func(t *testing.T) {
		_, err := NewQubitState(Bit(2))
		assert.ErrorIs(t, err, ErrInvalidBit)
	})
}

// TestQubitStateSetState tests raw state replacement
func TestQubitStateSetState(t *testing.T) {
	q, err := NewQubitState(Zero)
	require.NoError(t, err)

	q.SetState(Amplitudes{0.6, 0.8i})
	assert.Equal(t, Amplitudes{0.6, 0.8i}, q.State())
	assert.InDelta(t, 1.0, q.Norm(), 1e-12)

	// No normalization is applied on write
	q.SetState(Amplitudes{2, 0})
	assert.Equal(t, 4.0, q.Norm())
}

// TestParseBit tests the qubit-literal collaborator
func TestParseBit(t *testing.T) {
	tests := []struct {
		name        string
		input       rune
		expected    Bit
		shouldError bool
	}{
		{"Character 0", '0', Zero, false},
		{"Character 1", '1', One, false},
		{"Character 2", '2', 0, true},
		{"Letter", 'a', 0, true},
		{"Space", ' ', 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bit, err := ParseBit(tt.input)
			if tt.shouldError {
				assert.ErrorIs(t, err, ErrInvalidBit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bit)
		})
	}
}

// TestParseBits tests string parsing and formatting
func TestParseBits(t *testing.T) {
	bits, err := ParseBits("0110")
	require.NoError(t, err)
	assert.Equal(t, []Bit{Zero, One, One, Zero}, bits)

	empty, err := ParseBits("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseBits("01x1")
	require.ErrorIs(t, err, ErrInvalidBit)
	assert.Contains(t, err.Error(), "position 2")
}

// TestBitsToBytes tests bit-to-byte conversion
func TestBitsToBytes(t *testing.T) {
	tests := []struct {
		name     string
		bits     []Bit
		expected []byte
	}{
		{
			name:     "Empty",
			bits:     []Bit{},
			expected: []byte{},
		},
		{
			name:     "Single 1 bit",
			bits:     []Bit{One},
			expected: []byte{0x80},
		},
		{
			name:     "Pattern 10110001",
			bits:     []Bit{One, Zero, One, One, Zero, Zero, Zero, One},
			expected: []byte{0xB1},
		},
		{
			name:     "16 bits",
			bits:     []Bit{One, Zero, One, Zero, One, Zero, One, Zero, Zero, One, Zero, One, Zero, One, Zero, One},
			expected: []byte{0xAA, 0x55},
		},
		{
			name:     "Not full byte (5 bits)",
			bits:     []Bit{One, One, One, One, One},
			expected: []byte{0xF8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BitsToBytes(tt.bits))
		})
	}
}

func BenchmarkBitsToBytes(b *testing.B) {
	bits, _ := ParseBits("1011000110110001101100011011000110110001101100011011000110110001")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BitsToBytes(bits)
	}
}
