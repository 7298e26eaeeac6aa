package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	models "github.com/jaskrrish/Go-QSim/internal/models/qsim"
	qsimcore "github.com/jaskrrish/Go-QSim/internal/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// CircuitHandler manages circuit and randomness HTTP requests
type CircuitHandler struct {
	registry *qsimcore.Registry
	qrng     *qsimcore.QRNG
	logger   *slog.Logger
}

// NewCircuitHandler creates a handler over a registry and random generator
func NewCircuitHandler(registry *qsimcore.Registry, qrng *qsimcore.QRNG, logger *slog.Logger) *CircuitHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CircuitHandler{
		registry: registry,
		qrng:     qrng,
		logger:   logger,
	}
}

// Register installs every route on mux
func (h *CircuitHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", HomeHandler)
	mux.HandleFunc("GET /health", HealthHandler)

	mux.HandleFunc("POST /api/v1/circuits", h.CreateCircuitHandler)
	mux.HandleFunc("GET /api/v1/circuits/{id}", h.GetCircuitHandler)
	mux.HandleFunc("DELETE /api/v1/circuits/{id}", h.DeleteCircuitHandler)
	mux.HandleFunc("POST /api/v1/circuits/{id}/gates", h.ApplyGateHandler)
	mux.HandleFunc("GET /api/v1/circuits/{id}/probabilities", h.ProbabilitiesHandler)
	mux.HandleFunc("POST /api/v1/circuits/{id}/measure", h.MeasureHandler)
	mux.HandleFunc("GET /api/v1/circuits/{id}/qasm", h.QASMHandler)

	mux.HandleFunc("POST /api/v1/random", h.RandomHandler)
}

// CreateCircuitHandler handles POST /api/v1/circuits
func (h *CircuitHandler) CreateCircuitHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CircuitCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	circuit, err := h.registry.CreateCircuit(&req)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, models.CircuitResponse{
		Circuit: circuit,
	})
}

// GetCircuitHandler handles GET /api/v1/circuits/{id}
func (h *CircuitHandler) GetCircuitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	circuit, err := h.registry.GetCircuit(id)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.CircuitResponse{
		Circuit: circuit,
	})
}

// DeleteCircuitHandler handles DELETE /api/v1/circuits/{id}
func (h *CircuitHandler) DeleteCircuitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	if err := h.registry.DeleteCircuit(id); err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Circuit deleted successfully",
	})
}

// ApplyGateHandler handles POST /api/v1/circuits/{id}/gates
func (h *CircuitHandler) ApplyGateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	var req models.GateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	circuit, err := h.registry.ApplyGate(id, &req)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.CircuitResponse{
		Circuit: circuit,
	})
}

// ProbabilitiesHandler handles GET /api/v1/circuits/{id}/probabilities
func (h *CircuitHandler) ProbabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	probs, err := h.registry.Probabilities(id)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, probs)
}

// MeasureHandler handles POST /api/v1/circuits/{id}/measure.
// An empty body measures with the default shot count.
func (h *CircuitHandler) MeasureHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	var req models.MeasureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.registry.Measure(id, req.Shots)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// QASMHandler handles GET /api/v1/circuits/{id}/qasm[?measure=false]
func (h *CircuitHandler) QASMHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := circuitID(w, r)
	if !ok {
		return
	}

	measure := true
	if raw := r.URL.Query().Get("measure"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid measure flag")
			return
		}
		measure = parsed
	}

	qasm, err := h.registry.ExportQASM(id, measure)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, qasm)
}

// RandomHandler handles POST /api/v1/random
func (h *CircuitHandler) RandomHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RandomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondWithStatus(w, err)
		return
	}

	result, err := h.qrng.Generate(req.Bytes)
	if err != nil {
		h.respondWithStatus(w, err)
		return
	}

	if !result.Healthy {
		h.logger.Warn("entropy source unhealthy", "bias", result.Bias, "message", result.Message)
		respondWithError(w, http.StatusServiceUnavailable, models.ErrEntropySourceUnhealthy.Error()+": "+result.Message)
		return
	}

	respondWithJSON(w, http.StatusOK, models.RandomResponse{
		Hex:          hex.EncodeToString(result.Bytes),
		Bytes:        len(result.Bytes),
		RawBitLength: result.RawBitLength,
		Bias:         result.Bias,
		MinEntropy:   result.MinEntropy,
		Entropy:      result.Entropy,
		Method:       string(h.qrng.Method()),
	})
}

// circuitID parses the {id} path segment, writing a 400 on failure
func circuitID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, models.ErrInvalidCircuitID.Error())
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var qsimErr *models.QSimError
	var circuitErr *quantum.CircuitError

	switch {
	case errors.Is(err, models.ErrCircuitNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCircuitExpired):
		return http.StatusGone
	case errors.Is(err, quantum.ErrMalformedDistribution):
		return http.StatusUnprocessableEntity
	case errors.As(err, &qsimErr), errors.As(err, &circuitErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithStatus writes err with the status statusFor picks
func (h *CircuitHandler) respondWithStatus(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	respondWithError(w, status, err.Error())
}
