package qsim

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/jaskrrish/Go-QSim/internal/models/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(opts ...RegistryOption) *Registry {
	base := []RegistryOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return NewRegistry(quantum.NewStateVectorBackend(), append(base, opts...)...)
}

// TestCreateCircuit tests circuit creation
func TestCreateCircuit(t *testing.T) {
	r := newTestRegistry()

	req := &models.CircuitCreateRequest{Bits: "0110"}
	circuit, err := r.CreateCircuit(req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, circuit.CircuitID)
	assert.Equal(t, "0110", circuit.Bits)
	assert.Equal(t, 4, circuit.NumQubits)
	assert.Equal(t, "real-square", circuit.ProbabilityRule)
	assert.Empty(t, circuit.Operations)
	assert.WithinDuration(t, circuit.CreatedAt.Add(time.Hour), circuit.ExpiresAt, time.Second)

	retrieved, err := r.GetCircuit(circuit.CircuitID)
	require.NoError(t, err)
	assert.Equal(t, circuit.CircuitID, retrieved.CircuitID)
	assert.Equal(t, 1, r.Count())
}

// TestCircuitValidation tests request validation
func TestCircuitValidation(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name        string
		req         *models.CircuitCreateRequest
		expectedErr error
	}{
		{"Valid request", &models.CircuitCreateRequest{Bits: "01"}, nil},
		{"Born rule", &models.CircuitCreateRequest{Bits: "01", ProbabilityRule: "born"}, nil},
		{"Empty bits", &models.CircuitCreateRequest{Bits: ""}, models.ErrInvalidBits},
		{"Bad bits", &models.CircuitCreateRequest{Bits: "0a1"}, models.ErrInvalidBits},
		{"Bad rule", &models.CircuitCreateRequest{Bits: "0", ProbabilityRule: "magic"}, models.ErrInvalidProbabilityRule},
		{"Bad TTL", &models.CircuitCreateRequest{Bits: "0", TTLMinutes: 100000}, models.ErrInvalidTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateCircuit(tt.req)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// TestRegistryDefaults tests configured defaults for rule and TTL
func TestRegistryDefaults(t *testing.T) {
	r := newTestRegistry(
		WithDefaultRule(quantum.BornRule),
		WithDefaultTTL(5),
		WithMaxShots(10),
		WithDefaultShots(4),
		WithMaxQubits(3),
	)

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "1"})
	require.NoError(t, err)

	assert.Equal(t, "born", circuit.ProbabilityRule)
	assert.WithinDuration(t, circuit.CreatedAt.Add(5*time.Minute), circuit.ExpiresAt, time.Second)
	assert.Equal(t, 10, r.MaxShots())

	result, err := r.Measure(circuit.CircuitID, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Shots)

	_, err = r.Measure(circuit.CircuitID, 11)
	assert.ErrorIs(t, err, models.ErrInvalidShots)

	_, err = r.CreateCircuit(&models.CircuitCreateRequest{Bits: "0000"})
	assert.ErrorIs(t, err, models.ErrRegisterTooLarge)
}

// TestRegistryDefaultTTLOutOfRange tests that a default TTL the request
// validation would reject is ignored
func TestRegistryDefaultTTLOutOfRange(t *testing.T) {
	for _, minutes := range []int{0, -5, models.MaxTTLMinutes + 1, 2880} {
		r := newTestRegistry(WithDefaultTTL(minutes))

		circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "01"})
		require.NoError(t, err, "default TTL %d", minutes)
		assert.WithinDuration(t, circuit.CreatedAt.Add(models.DefaultTTLMinutes*time.Minute), circuit.ExpiresAt, time.Second)
	}

	r := newTestRegistry(WithDefaultTTL(models.MaxTTLMinutes))
	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "01"})
	require.NoError(t, err)
	assert.WithinDuration(t, circuit.CreatedAt.Add(models.MaxTTLMinutes*time.Minute), circuit.ExpiresAt, time.Second)
}

// TestApplyGate tests gate application and operation history
func TestApplyGate(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "00"})
	require.NoError(t, err)

	updated, err := r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "H", Qubit: 1})
	require.NoError(t, err)
	updated, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "pauli-x", Qubit: 0})
	require.NoError(t, err)

	require.Len(t, updated.Operations, 2)
	assert.Equal(t, models.OperationView{Gate: "Hadamard", Mnemonic: "h", Qubit: 1}, updated.Operations[0])
	assert.Equal(t, "x", updated.Operations[1].Mnemonic)

	probs, err := r.Probabilities(circuit.CircuitID)
	require.NoError(t, err)
	require.Len(t, probs.Outcomes, 4)
	assert.Equal(t, "10", probs.Outcomes[2].Outcome)
	assert.InDelta(t, 0.5, probs.Outcomes[2].Probability, 1e-12)
	assert.InDelta(t, 0.5, probs.Outcomes[3].Probability, 1e-12)
	assert.InDelta(t, 1.0, probs.Sum, 1e-12)
}

// TestApplyGateErrors tests gate failures
func TestApplyGateErrors(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "01"})
	require.NoError(t, err)

	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "cnot", Qubit: 0})
	assert.ErrorIs(t, err, models.ErrInvalidGate)

	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "h", Qubit: -1})
	assert.ErrorIs(t, err, models.ErrInvalidQubit)

	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "h", Qubit: 2})
	assert.ErrorIs(t, err, quantum.ErrQubitOutOfRange)

	_, err = r.ApplyGate(uuid.New(), &models.GateRequest{Gate: "h", Qubit: 0})
	assert.ErrorIs(t, err, models.ErrCircuitNotFound)

	// Failed gates leave no trace in the history
	current, err := r.GetCircuit(circuit.CircuitID)
	require.NoError(t, err)
	assert.Empty(t, current.Operations)
}

// TestMeasure tests sampling through the backend
func TestMeasure(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "01"})
	require.NoError(t, err)

	t.Run("single shot", func(t *testing.T) {
		result, err := r.Measure(circuit.CircuitID, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Shots)
		assert.Equal(t, "01", result.Outcome)
		assert.Equal(t, "StateVectorSimulator", result.Backend)
	})

	t.Run("many shots", func(t *testing.T) {
		result, err := r.Measure(circuit.CircuitID, 100)
		require.NoError(t, err)
		assert.Empty(t, result.Outcome)
		assert.Equal(t, map[string]int{"01": 100}, result.Counts)
		assert.Equal(t, "01", result.MostFrequent)
	})

	session, err := r.GetCircuit(circuit.CircuitID)
	require.NoError(t, err)
	assert.Equal(t, 101, session.Measurements)
	assert.Equal(t, "01", session.LastOutcome)
}

// TestMeasureMalformedDistribution tests the RealSquare weighting after T
func TestMeasureMalformedDistribution(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "0"})
	require.NoError(t, err)
	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "h", Qubit: 0})
	require.NoError(t, err)
	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "t", Qubit: 0})
	require.NoError(t, err)

	_, err = r.Measure(circuit.CircuitID, 1)
	assert.ErrorIs(t, err, quantum.ErrMalformedDistribution)

	// Failed measurements are not counted
	session, err := r.GetCircuit(circuit.CircuitID)
	require.NoError(t, err)
	assert.Zero(t, session.Measurements)
}

// TestExportQASM tests OpenQASM rendering of stored circuits
func TestExportQASM(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "10"})
	require.NoError(t, err)
	_, err = r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "h", Qubit: 1})
	require.NoError(t, err)

	qasm, err := r.ExportQASM(circuit.CircuitID, true)
	require.NoError(t, err)
	assert.Contains(t, qasm, "qreg q[2];")
	assert.Contains(t, qasm, "x q[0];")
	assert.Contains(t, qasm, "h q[1];")
	assert.Contains(t, qasm, "measure q[1] -> c[1];")

	_, err = r.ExportQASM(uuid.New(), false)
	assert.ErrorIs(t, err, models.ErrCircuitNotFound)
}

// TestDeleteCircuit tests circuit removal
func TestDeleteCircuit(t *testing.T) {
	r := newTestRegistry()

	circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "1"})
	require.NoError(t, err)

	require.NoError(t, r.DeleteCircuit(circuit.CircuitID))
	_, err = r.GetCircuit(circuit.CircuitID)
	assert.ErrorIs(t, err, models.ErrCircuitNotFound)

	assert.ErrorIs(t, r.DeleteCircuit(circuit.CircuitID), models.ErrCircuitNotFound)
}

// TestCleanupExpired tests TTL expiry
func TestCleanupExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(WithClock(clock.Now))

	short, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "0", TTLMinutes: 1})
	require.NoError(t, err)
	long, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "1", TTLMinutes: 60})
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	// Expired circuits are refused before they are swept
	_, err = r.GetCircuit(short.CircuitID)
	assert.ErrorIs(t, err, models.ErrCircuitExpired)
	_, err = r.Measure(short.CircuitID, 1)
	assert.ErrorIs(t, err, models.ErrCircuitExpired)

	assert.Equal(t, 1, r.CleanupExpired())
	assert.Equal(t, 1, r.Count())

	_, err = r.GetCircuit(short.CircuitID)
	assert.ErrorIs(t, err, models.ErrCircuitNotFound)
	_, err = r.GetCircuit(long.CircuitID)
	assert.NoError(t, err)

	assert.Zero(t, r.CleanupExpired())
}

// TestConcurrentCircuits tests parallel use of independent circuits
func TestConcurrentCircuits(t *testing.T) {
	r := newTestRegistry()

	numCircuits := 8
	ids := make([]uuid.UUID, numCircuits)
	for i := 0; i < numCircuits; i++ {
		circuit, err := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "000"})
		require.NoError(t, err)
		ids[i] = circuit.CircuitID
	}

	var wg sync.WaitGroup
	errs := make(chan error, numCircuits*4)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for q := 0; q < 3; q++ {
				if _, err := r.ApplyGate(id, &models.GateRequest{Gate: "h", Qubit: q}); err != nil {
					errs <- err
				}
			}
			if _, err := r.Measure(id, 50); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	for _, id := range ids {
		session, err := r.GetCircuit(id)
		require.NoError(t, err)
		assert.Len(t, session.Operations, 3)
		assert.Equal(t, 50, session.Measurements)
	}
}

func BenchmarkCreateCircuit(b *testing.B) {
	r := newTestRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.CreateCircuit(&models.CircuitCreateRequest{Bits: "01010101"})
	}
}

func BenchmarkRegistryMeasure(b *testing.B) {
	r := newTestRegistry()
	circuit, _ := r.CreateCircuit(&models.CircuitCreateRequest{Bits: "00000000"})
	for q := 0; q < 8; q++ {
		r.ApplyGate(circuit.CircuitID, &models.GateRequest{Gate: "h", Qubit: q})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Measure(circuit.CircuitID, 100)
	}
}
