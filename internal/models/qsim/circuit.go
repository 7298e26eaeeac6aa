package qsim

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// Default and limit values applied by request validation
const (
	DefaultTTLMinutes = 60
	MaxTTLMinutes     = 1440
	DefaultShots      = 1
	MaxRandomBytes    = 1024
)

// OperationView is a recorded gate application as exposed over the API
type OperationView struct {
	Gate     string `json:"gate"`
	Mnemonic string `json:"mnemonic"`
	Qubit    int    `json:"qubit"`
}

// CircuitSession represents a stored qubit register and its history
type CircuitSession struct {
	CircuitID       uuid.UUID       `json:"circuit_id"`
	Bits            string          `json:"bits"`
	NumQubits       int             `json:"num_qubits"`
	ProbabilityRule string          `json:"probability_rule"`
	Operations      []OperationView `json:"operations"`
	Measurements    int             `json:"measurements"`
	LastOutcome     string          `json:"last_outcome,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

// CircuitCreateRequest represents a request to create a new register
type CircuitCreateRequest struct {
	Bits            string `json:"bits"`
	ProbabilityRule string `json:"probability_rule,omitempty"`
	TTLMinutes      int    `json:"ttl_minutes,omitempty"`
}

// GateRequest represents a request to apply a single-qubit gate
type GateRequest struct {
	Gate  string `json:"gate"`
	Qubit int    `json:"qubit"`
}

// MeasureRequest represents a request to sample a register
type MeasureRequest struct {
	Shots int `json:"shots,omitempty"`
}

// RandomRequest represents a request for QRNG output
type RandomRequest struct {
	Bytes int `json:"bytes"`
}

// CircuitResponse represents the response when creating or querying a circuit
type CircuitResponse struct {
	Circuit *CircuitSession `json:"circuit"`
	Error   string          `json:"error,omitempty"`
}

// OutcomeProbability pairs a basis outcome with its weight
type OutcomeProbability struct {
	Outcome     string  `json:"outcome"`
	Probability float64 `json:"probability"`
}

// ProbabilitiesResponse lists the outcome distribution in index order
type ProbabilitiesResponse struct {
	CircuitID       uuid.UUID            `json:"circuit_id"`
	ProbabilityRule string               `json:"probability_rule"`
	Outcomes        []OutcomeProbability `json:"outcomes"`
	Sum             float64              `json:"sum"`
}

// MeasureResponse carries sampled outcomes for a circuit
type MeasureResponse struct {
	CircuitID    uuid.UUID          `json:"circuit_id"`
	Backend      string             `json:"backend"`
	Shots        int                `json:"shots"`
	Outcome      string             `json:"outcome,omitempty"`
	Counts       map[string]int     `json:"counts"`
	Empirical    map[string]float64 `json:"empirical"`
	MostFrequent string             `json:"most_frequent"`
}

// RandomResponse carries extracted random bytes and source statistics
type RandomResponse struct {
	Hex          string  `json:"hex"`
	Bytes        int     `json:"bytes"`
	RawBitLength int     `json:"raw_bit_length"`
	Bias         float64 `json:"bias"`
	MinEntropy   float64 `json:"min_entropy"`
	Entropy      float64 `json:"shannon_entropy"`
	Method       string  `json:"method"`
}

// Validate validates a circuit create request
func (r *CircuitCreateRequest) Validate() error {
	r.Bits = strings.TrimSpace(r.Bits)
	if r.Bits == "" {
		return ErrInvalidBits
	}

	if len(r.Bits) > quantum.MaxQubits {
		return ErrRegisterTooLarge
	}

	if strings.Trim(r.Bits, "01") != "" {
		return ErrInvalidBits
	}

	rule, ok := quantum.ParseProbabilityRule(strings.ToLower(strings.TrimSpace(r.ProbabilityRule)))
	if !ok {
		return ErrInvalidProbabilityRule
	}
	r.ProbabilityRule = rule.String()

	if r.TTLMinutes == 0 {
		r.TTLMinutes = DefaultTTLMinutes
	}

	if r.TTLMinutes < 1 || r.TTLMinutes > MaxTTLMinutes {
		return ErrInvalidTTL
	}

	return nil
}

// Validate validates a gate request. The qubit upper bound depends on the
// register and is checked when the gate is applied.
func (r *GateRequest) Validate() error {
	if _, err := quantum.LookupGate(r.Gate); err != nil {
		return ErrInvalidGate
	}

	if r.Qubit < 0 {
		return ErrInvalidQubit
	}

	return nil
}

// Validate validates a measure request against the configured shot limit
func (r *MeasureRequest) Validate(maxShots int) error {
	if r.Shots == 0 {
		r.Shots = DefaultShots
	}

	if r.Shots < 1 || r.Shots > maxShots {
		return ErrInvalidShots
	}

	return nil
}

// Validate validates a random request
func (r *RandomRequest) Validate() error {
	if r.Bytes < 1 || r.Bytes > MaxRandomBytes {
		return ErrInvalidByteCount
	}

	return nil
}

// Custom errors
type QSimError struct {
	Message string
}

func (e *QSimError) Error() string {
	return e.Message
}

var (
	ErrInvalidBits            = &QSimError{"bits must be a non-empty string of '0' and '1'"}
	ErrRegisterTooLarge       = &QSimError{"register exceeds the maximum number of qubits"}
	ErrInvalidProbabilityRule = &QSimError{"probability rule must be 'real-square' or 'born'"}
	ErrInvalidTTL             = &QSimError{"TTL must be between 1 and 1440 minutes"}
	ErrInvalidGate            = &QSimError{"unknown gate"}
	ErrInvalidQubit           = &QSimError{"qubit index must be non-negative"}
	ErrInvalidShots           = &QSimError{"shots out of range"}
	ErrInvalidByteCount       = &QSimError{"bytes must be between 1 and 1024"}
	ErrInvalidCircuitID       = &QSimError{"invalid circuit ID"}
	ErrCircuitNotFound        = &QSimError{"circuit not found"}
	ErrCircuitExpired         = &QSimError{"circuit has expired"}
	ErrEntropySourceUnhealthy = &QSimError{"entropy source failed health check"}
)
