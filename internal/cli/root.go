// Package cli implements the qsim command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qsim",
		Short: "qsim simulates registers of independent qubits",
		Long: `qsim simulates registers of independent qubits.

Build a register from a bit string, apply single-qubit gates, inspect the
outcome distribution and sample measurements. The same engine backs an HTTP
API (qsim serve) and a quantum random number generator (qsim random).`,
		SilenceUsage: true,
	}

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newQASMCmd())
	rootCmd.AddCommand(newRandomCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}
