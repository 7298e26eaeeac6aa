// Package qsim manages simulated qubit registers and quantum randomness.
package qsim

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	models "github.com/jaskrrish/Go-QSim/internal/models/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/linalg"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// DefaultMaxShots bounds a single Measure call
const DefaultMaxShots = 8192

// circuitEntry pairs a live register with its metadata
type circuitEntry struct {
	session *models.CircuitSession
	circuit *quantum.Circuit
}

// snapshot returns a copy safe to hand out after the lock is released
func (e *circuitEntry) snapshot() *models.CircuitSession {
	s := *e.session

	ops := e.circuit.Operations()
	s.Operations = make([]models.OperationView, len(ops))
	for i, op := range ops {
		s.Operations[i] = models.OperationView{
			Gate:     op.Gate.Name(),
			Mnemonic: op.Gate.Mnemonic(),
			Qubit:    op.Qubit,
		}
	}

	return &s
}

// Registry stores circuits by ID and runs gate and measurement requests
// against them
type Registry struct {
	circuits     map[uuid.UUID]*circuitEntry
	mutex        sync.RWMutex
	backend      quantum.Backend
	logger       *slog.Logger
	maxShots     int
	defaultShots int
	maxQubits    int
	defaultRule  quantum.ProbabilityRule
	defaultTTL   int
	now          func() time.Time
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMaxShots sets the per-request shot limit
func WithMaxShots(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxShots = n
		}
	}
}

// WithDefaultShots sets the shot count used when a request names none
func WithDefaultShots(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.defaultShots = n
		}
	}
}

// WithMaxQubits lowers the register size limit below quantum.MaxQubits
func WithMaxQubits(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 && n <= quantum.MaxQubits {
			r.maxQubits = n
		}
	}
}

// WithDefaultRule sets the rule used when a request names none
func WithDefaultRule(rule quantum.ProbabilityRule) RegistryOption {
	return func(r *Registry) {
		r.defaultRule = rule
	}
}

// WithDefaultTTL sets the lifetime in minutes used when a request names none
func WithDefaultTTL(minutes int) RegistryOption {
	return func(r *Registry) {
		if minutes > 0 && minutes <= models.MaxTTLMinutes {
			r.defaultTTL = minutes
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a new circuit registry
func NewRegistry(backend quantum.Backend, opts ...RegistryOption) *Registry {
	r := &Registry{
		circuits:     make(map[uuid.UUID]*circuitEntry),
		backend:      backend,
		logger:       slog.Default(),
		maxShots:     DefaultMaxShots,
		defaultShots: models.DefaultShots,
		maxQubits:    quantum.MaxQubits,
		defaultRule:  quantum.RealSquareRule,
		defaultTTL:   models.DefaultTTLMinutes,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// MaxShots returns the per-request shot limit
func (r *Registry) MaxShots() int {
	return r.maxShots
}

// CreateCircuit builds a register from the request bits and stores it
func (r *Registry) CreateCircuit(req *models.CircuitCreateRequest) (*models.CircuitSession, error) {
	if req.ProbabilityRule == "" {
		req.ProbabilityRule = r.defaultRule.String()
	}
	if req.TTLMinutes == 0 {
		req.TTLMinutes = r.defaultTTL
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if len(req.Bits) > r.maxQubits {
		return nil, models.ErrRegisterTooLarge
	}

	rule, _ := quantum.ParseProbabilityRule(req.ProbabilityRule)
	circuit, err := quantum.NewCircuit(req.Bits, quantum.WithProbabilityRule(rule))
	if err != nil {
		return nil, fmt.Errorf("failed to build circuit: %w", err)
	}

	now := r.now()
	entry := &circuitEntry{
		session: &models.CircuitSession{
			CircuitID:       uuid.New(),
			Bits:            req.Bits,
			NumQubits:       circuit.NumQubits(),
			ProbabilityRule: rule.String(),
			CreatedAt:       now,
			UpdatedAt:       now,
			ExpiresAt:       now.Add(time.Duration(req.TTLMinutes) * time.Minute),
		},
		circuit: circuit,
	}

	r.mutex.Lock()
	r.circuits[entry.session.CircuitID] = entry
	r.mutex.Unlock()

	r.logger.Info("circuit created",
		"circuit_id", entry.session.CircuitID,
		"qubits", entry.session.NumQubits,
		"rule", entry.session.ProbabilityRule,
	)

	return entry.snapshot(), nil
}

// lookup returns a live entry. Callers must hold the mutex.
func (r *Registry) lookup(id uuid.UUID) (*circuitEntry, error) {
	entry, exists := r.circuits[id]
	if !exists {
		return nil, models.ErrCircuitNotFound
	}

	if r.now().After(entry.session.ExpiresAt) {
		return nil, models.ErrCircuitExpired
	}

	return entry, nil
}

// GetCircuit retrieves a circuit by ID
func (r *Registry) GetCircuit(id uuid.UUID) (*models.CircuitSession, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	return entry.snapshot(), nil
}

// ApplyGate applies one gate to one qubit of a stored circuit
func (r *Registry) ApplyGate(id uuid.UUID, req *models.GateRequest) (*models.CircuitSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gate, err := quantum.LookupGate(req.Gate)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	if err := entry.circuit.Apply(gate, req.Qubit); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", gate.Name(), err)
	}
	entry.session.UpdatedAt = r.now()

	r.logger.Debug("gate applied", "circuit_id", id, "gate", gate.Mnemonic(), "qubit", req.Qubit)

	return entry.snapshot(), nil
}

// Probabilities returns the outcome distribution of a stored circuit
func (r *Registry) Probabilities(id uuid.UUID) (*models.ProbabilitiesResponse, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	probs := entry.circuit.Probabilities()
	outcomes := quantum.Outcomes(entry.circuit.NumQubits())

	resp := &models.ProbabilitiesResponse{
		CircuitID:       id,
		ProbabilityRule: entry.circuit.Rule().String(),
		Outcomes:        make([]models.OutcomeProbability, len(probs)),
		Sum:             linalg.Sum(probs),
	}
	for i, p := range probs {
		resp.Outcomes[i] = models.OutcomeProbability{Outcome: outcomes[i], Probability: p}
	}

	return resp, nil
}

// Measure samples a stored circuit shots times through the backend; zero
// shots means the configured default.
// Qubit states are not changed; the circuit's measurement count and last
// outcome are.
func (r *Registry) Measure(id uuid.UUID, shots int) (*models.MeasureResponse, error) {
	if shots == 0 {
		shots = r.defaultShots
	}

	req := models.MeasureRequest{Shots: shots}
	if err := req.Validate(r.maxShots); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	result, err := r.backend.Run(entry.circuit, req.Shots)
	if err != nil {
		r.logger.Warn("measurement failed", "circuit_id", id, "error", err)
		return nil, fmt.Errorf("measurement failed: %w", err)
	}

	entry.session.Measurements += req.Shots
	entry.session.LastOutcome = result.MostFrequent
	entry.session.UpdatedAt = r.now()

	resp := &models.MeasureResponse{
		CircuitID:    id,
		Backend:      result.Backend,
		Shots:        result.Shots,
		Counts:       result.Counts,
		Empirical:    result.Empirical,
		MostFrequent: result.MostFrequent,
	}
	if req.Shots == 1 {
		resp.Outcome = result.MostFrequent
	}

	r.logger.Debug("circuit measured", "circuit_id", id, "shots", req.Shots, "most_frequent", result.MostFrequent)

	return resp, nil
}

// ExportQASM renders a stored circuit as OpenQASM 2.0
func (r *Registry) ExportQASM(id uuid.UUID, measure bool) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, err := r.lookup(id)
	if err != nil {
		return "", err
	}

	return entry.circuit.ToQASM(measure), nil
}

// DeleteCircuit discards a circuit
func (r *Registry) DeleteCircuit(id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.circuits[id]; !exists {
		return models.ErrCircuitNotFound
	}

	delete(r.circuits, id)
	r.logger.Info("circuit deleted", "circuit_id", id)

	return nil
}

// Count returns the number of stored circuits, expired ones included
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.circuits)
}

// CleanupExpired removes expired circuits and returns how many were removed
func (r *Registry) CleanupExpired() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	removed := 0

	for id, entry := range r.circuits {
		if now.After(entry.session.ExpiresAt) {
			delete(r.circuits, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info("expired circuits removed", "count", removed)
	}

	return removed
}
