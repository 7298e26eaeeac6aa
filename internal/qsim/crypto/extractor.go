// Package crypto turns raw measurement bits into uniform random bytes.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math"
	"strings"

	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
	"golang.org/x/crypto/sha3"
)

// ExtractionMethod defines the hash function used for randomness extraction
type ExtractionMethod string

const (
	// SHA256Method uses SHA-256 for extraction
	SHA256Method ExtractionMethod = "SHA256"
	// SHA512Method uses SHA-512 for extraction
	SHA512Method ExtractionMethod = "SHA512"
	// SHA3_256Method uses SHA3-256 for extraction
	SHA3_256Method ExtractionMethod = "SHA3-256"
	// SHA3_512Method uses SHA3-512 for extraction
	SHA3_512Method ExtractionMethod = "SHA3-512"
)

// DefaultSecurityParameter is the entropy slack, in bits, kept back from the
// extractable length
const DefaultSecurityParameter = 64

// MaxSecurityParameter caps the slack SetSecurityParameter accepts
const MaxSecurityParameter = 512

// ParseExtractionMethod resolves a case-insensitive method name
func ParseExtractionMethod(name string) (ExtractionMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SHA256", "SHA-256":
		return SHA256Method, nil
	case "SHA512", "SHA-512":
		return SHA512Method, nil
	case "SHA3-256", "SHA3_256":
		return SHA3_256Method, nil
	case "SHA3-512", "SHA3_512":
		return SHA3_512Method, nil
	default:
		return "", fmt.Errorf("unknown extraction method: %s", name)
	}
}

// Extractor compresses biased or partially predictable bits into uniform bytes
type Extractor struct {
	method            ExtractionMethod
	securityParameter int
}

// NewExtractor creates an extractor for the given hash method
func NewExtractor(method ExtractionMethod) (*Extractor, error) {
	e := &Extractor{
		method:            method,
		securityParameter: DefaultSecurityParameter,
	}

	if _, err := e.getHasher(); err != nil {
		return nil, err
	}

	return e, nil
}

// Method returns the configured hash method
func (e *Extractor) Method() ExtractionMethod {
	return e.method
}

// SecurityParameter returns the entropy slack in bits
func (e *Extractor) SecurityParameter() int {
	return e.securityParameter
}

// SetSecurityParameter overrides the entropy slack. Values outside
// [0, MaxSecurityParameter] are ignored.
func (e *Extractor) SetSecurityParameter(bits int) {
	if bits >= 0 && bits <= MaxSecurityParameter {
		e.securityParameter = bits
	}
}

// Extract hashes raw bits down to targetLength uniform bits.
// Parameters:
//   - raw: the measured bits
//   - minEntropy: estimated min-entropy per raw bit (0.0-1.0)
//   - targetLength: desired output length in bits
func (e *Extractor) Extract(raw []quantum.Bit, minEntropy float64, targetLength int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	if targetLength <= 0 {
		return nil, fmt.Errorf("target length must be positive")
	}

	maxLength := ExtractableLength(len(raw), minEntropy, e.securityParameter)
	if maxLength < targetLength {
		return nil, fmt.Errorf("cannot extract %d bits: at most %d bits available from %d raw bits",
			targetLength, maxLength, len(raw))
	}

	rawBytes := quantum.BitsToBytes(raw)

	// Counter mode expands beyond a single digest
	output := make([]byte, 0)
	counter := 0

	for len(output)*8 < targetLength {
		h, err := e.getHasher()
		if err != nil {
			return nil, err
		}
		h.Write(rawBytes)
		h.Write([]byte(fmt.Sprintf("%d", counter)))
		output = append(output, h.Sum(nil)...)
		counter++
	}

	targetBytes := (targetLength + 7) / 8
	output = output[:targetBytes]
	if rem := targetLength % 8; rem != 0 {
		output[targetBytes-1] &= byte(0xFF << (8 - rem))
	}

	return output, nil
}

// getHasher returns the appropriate hash function based on the extraction method
func (e *Extractor) getHasher() (hash.Hash, error) {
	switch e.method {
	case SHA256Method:
		return sha256.New(), nil
	case SHA512Method:
		return sha512.New(), nil
	case SHA3_256Method:
		return sha3.New256(), nil
	case SHA3_512Method:
		return sha3.New512(), nil
	default:
		return nil, fmt.Errorf("unknown extraction method: %s", e.method)
	}
}

// ExtractableLength bounds the uniform output of a hash extractor by the
// leftover hash lemma: total min-entropy minus the security parameter
func ExtractableLength(rawBits int, minEntropy float64, securityParameter int) int {
	if minEntropy <= 0 || rawBits <= 0 {
		return 0
	}
	if minEntropy > 1 {
		minEntropy = 1
	}

	length := int(math.Floor(float64(rawBits)*minEntropy)) - securityParameter
	if length < 0 {
		return 0
	}

	return length
}

// MinEntropy returns the per-bit min-entropy of a source emitting ones with
// probability p: -log2(max(p, 1-p))
func MinEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -math.Log2(math.Max(p, 1-p))
}

// BinaryEntropy calculates the Shannon entropy H(p) = -p*log2(p) - (1-p)*log2(1-p)
func BinaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}
