package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newQASMCmd creates the qasm command
func newQASMCmd() *cobra.Command {
	var (
		flags   circuitFlags
		measure bool
	)

	cmd := &cobra.Command{
		Use:   "qasm <bits>",
		Short: "Print a register and its gates as OpenQASM 2.0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.build(args[0])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), c.ToQASM(measure))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&flags.gates, "gate", "g", nil, "Gate to apply as name:qubit (repeatable)")
	cmd.Flags().BoolVarP(&measure, "measure", "m", false, "Append a measurement of every qubit")

	return cmd
}
