// Package server assembles the qsim HTTP API from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jaskrrish/Go-QSim/internal/config"
	"github.com/jaskrrish/Go-QSim/internal/handlers"
	"github.com/jaskrrish/Go-QSim/internal/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/crypto"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// shutdownTimeout bounds graceful shutdown
const shutdownTimeout = 10 * time.Second

// Server owns the circuit registry, the random generator and the HTTP listener
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *qsim.Registry
	qrng       *qsim.QRNG
	httpServer *http.Server
}

// New wires a server from configuration
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	method, err := crypto.ParseExtractionMethod(cfg.QRNG.ExtractionMethod)
	if err != nil {
		return nil, err
	}

	qrng, err := qsim.NewQRNG(cfg.QRNG.Width, method)
	if err != nil {
		return nil, fmt.Errorf("creating random generator: %w", err)
	}
	qrng.SetBiasThreshold(cfg.QRNG.BiasThreshold)
	qrng.SetSecurityParameter(cfg.QRNG.SecurityParameter)

	registry := qsim.NewRegistry(
		quantum.NewStateVectorBackend(),
		qsim.WithLogger(logger.With("component", "registry")),
		qsim.WithMaxQubits(cfg.Simulation.MaxQubits),
		qsim.WithMaxShots(cfg.Simulation.MaxShots),
		qsim.WithDefaultShots(cfg.Simulation.DefaultShots),
		qsim.WithDefaultRule(cfg.Rule()),
		qsim.WithDefaultTTL(int(cfg.Simulation.CircuitTTL/time.Minute)),
	)

	mux := http.NewServeMux()
	handlers.NewCircuitHandler(registry, qrng, logger).Register(mux)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		qrng:     qrng,
		httpServer: &http.Server{
			Addr:         cfg.Server.HTTPAddr,
			Handler:      loggingMiddleware(logger, mux),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Handler returns the HTTP handler including request logging
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Registry returns the circuit registry
func (s *Server) Registry() *qsim.Registry {
	return s.registry
}

// QRNG returns the random generator behind /api/v1/random
func (s *Server) QRNG() *qsim.QRNG {
	return s.qrng
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

// cleanupLoop sweeps expired circuits every cleanup interval
func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Simulation.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.registry.CleanupExpired()
		}
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.RequestURI,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
