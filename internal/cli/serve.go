package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jaskrrish/Go-QSim/internal/config"
	"github.com/jaskrrish/Go-QSim/internal/handlers"
	"github.com/jaskrrish/Go-QSim/internal/server"
)

// NewServeCmd creates the serve command. cmd/api runs it as a standalone
// binary.
func NewServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Configuration is read from --config, then $QSIM_CONFIG, then built-in
defaults. $PORT overrides server.http_addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen)
			gray := color.New(color.FgHiBlack)

			color.New(color.FgCyan).Fprintf(out, "    qsim %s\n\n", handlers.Version)
			green.Fprint(out, "    ▶ ")
			fmt.Fprintf(out, "HTTP:      %s\n", cfg.Server.HTTPAddr)
			green.Fprint(out, "    ▶ ")
			fmt.Fprintf(out, "Rule:      %s\n", cfg.Simulation.ProbabilityRule)
			green.Fprint(out, "    ▶ ")
			fmt.Fprintf(out, "QRNG:      %d qubits, %s\n", cfg.QRNG.Width, cfg.QRNG.ExtractionMethod)
			gray.Fprintf(out, "    circuits expire after %s\n\n", cfg.Simulation.CircuitTTL)

			logger := server.SetupLogger(cfg.Logging, out)

			srv, err := server.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}
