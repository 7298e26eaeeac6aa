package qsim

import (
	"fmt"
	"math"
	"strings"

	"github.com/jaskrrish/Go-QSim/internal/qsim/crypto"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

const (
	// DefaultQRNGWidth is the register width used when none is configured
	DefaultQRNGWidth = 8

	// MinRawBits is the smallest sample the bias estimate is taken over
	MinRawBits = 4096
)

// QRNG generates random bytes by measuring qubits in uniform superposition
type QRNG struct {
	width         int
	extractor     *crypto.Extractor
	biasThreshold float64 // Maximum allowed |P(1) - 0.5| before output is rejected
	oversampling  int     // Raw bits collected per extractable bit
	circuitOpts   []quantum.Option
}

// NewQRNG creates a generator over a width-qubit register
func NewQRNG(width int, method crypto.ExtractionMethod, opts ...quantum.Option) (*QRNG, error) {
	if width < 1 {
		return nil, quantum.ErrEmptyRegister
	}
	if width > quantum.MaxQubits {
		return nil, fmt.Errorf("%w: width %d", quantum.ErrRegisterTooLarge, width)
	}

	extractor, err := crypto.NewExtractor(method)
	if err != nil {
		return nil, err
	}

	return &QRNG{
		width:         width,
		extractor:     extractor,
		biasThreshold: 0.05,
		oversampling:  2,
		circuitOpts:   opts,
	}, nil
}

// SetBiasThreshold sets a custom bias threshold
func (q *QRNG) SetBiasThreshold(threshold float64) {
	if threshold > 0 && threshold < 0.5 {
		q.biasThreshold = threshold
	}
}

// SetSecurityParameter sets the entropy slack withheld by the extractor
func (q *QRNG) SetSecurityParameter(bits int) {
	q.extractor.SetSecurityParameter(bits)
}

// SecurityParameter returns the entropy slack withheld by the extractor
func (q *QRNG) SecurityParameter() int {
	return q.extractor.SecurityParameter()
}

// Width returns the register width
func (q *QRNG) Width() int {
	return q.width
}

// Method returns the extraction hash method
func (q *QRNG) Method() crypto.ExtractionMethod {
	return q.extractor.Method()
}

// RandomResult contains the result of a generation run
type RandomResult struct {
	Bytes        []byte
	RawBitLength int
	Bias         float64
	MinEntropy   float64
	Entropy      float64 // Shannon entropy per raw bit
	Healthy      bool
	Message      string
}

// prepareRegister builds the all-zero register and puts every qubit into
// equal superposition with a Hadamard
func (q *QRNG) prepareRegister() (*quantum.Circuit, error) {
	c, err := quantum.NewCircuit(strings.Repeat("0", q.width), q.circuitOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare register: %w", err)
	}

	for i := 0; i < q.width; i++ {
		if err := c.H(i); err != nil {
			return nil, fmt.Errorf("failed to prepare register: %w", err)
		}
	}

	return c, nil
}

// CollectRawBits measures the prepared register until n bits are gathered
func (q *QRNG) CollectRawBits(n int) ([]quantum.Bit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bit count must be positive")
	}

	c, err := q.prepareRegister()
	if err != nil {
		return nil, err
	}

	shots := (n + q.width - 1) / q.width
	outcomes, err := c.MeasureShots(shots)
	if err != nil {
		return nil, fmt.Errorf("measurement failed: %w", err)
	}

	bits := make([]quantum.Bit, 0, shots*q.width)
	for _, outcome := range outcomes {
		parsed, err := quantum.ParseBits(outcome)
		if err != nil {
			return nil, err
		}
		bits = append(bits, parsed...)
	}

	return bits[:n], nil
}

// EstimateBias returns the fraction of ones in bits
func EstimateBias(bits []quantum.Bit) float64 {
	if len(bits) == 0 {
		return 0
	}

	ones := 0
	for _, b := range bits {
		if b == quantum.One {
			ones++
		}
	}

	return float64(ones) / float64(len(bits))
}

// withinThreshold reports whether the observed bias passes the health check
func (q *QRNG) withinThreshold(bias float64) bool {
	return math.Abs(bias-0.5) <= q.biasThreshold
}

// Generate produces numBytes of extracted randomness.
// An unhealthy source yields a result with Healthy false and no bytes.
func (q *QRNG) Generate(numBytes int) (*RandomResult, error) {
	if numBytes <= 0 {
		return nil, fmt.Errorf("byte count must be positive")
	}

	targetBits := numBytes * 8
	rawLength := q.oversampling * (targetBits + q.extractor.SecurityParameter())
	if rawLength < MinRawBits {
		rawLength = MinRawBits
	}

	raw, err := q.CollectRawBits(rawLength)
	if err != nil {
		return nil, fmt.Errorf("raw bit collection failed: %w", err)
	}

	result := &RandomResult{
		RawBitLength: len(raw),
		Bias:         EstimateBias(raw),
	}
	result.MinEntropy = crypto.MinEntropy(result.Bias)
	result.Entropy = crypto.BinaryEntropy(result.Bias)

	if !q.withinThreshold(result.Bias) {
		result.Message = fmt.Sprintf("UNHEALTHY: bias %.2f%% ones deviates more than %.2f%% from uniform",
			result.Bias*100, q.biasThreshold*100)
		return result, nil
	}

	out, err := q.extractor.Extract(raw, result.MinEntropy, targetBits)
	if err != nil {
		result.Message = fmt.Sprintf("Insufficient entropy: %v", err)
		return result, nil
	}

	result.Bytes = out
	result.Healthy = true
	result.Message = fmt.Sprintf("Generated %d bytes from %d raw bits (min-entropy %.3f/bit)",
		numBytes, len(raw), result.MinEntropy)

	return result, nil
}
