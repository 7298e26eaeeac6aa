package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// barWidth is the length of a bar for probability 1
const barWidth = 40

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	var (
		flags circuitFlags
		shots int
	)

	cmd := &cobra.Command{
		Use:   "run <bits>",
		Short: "Build a register, apply gates and measure it",
		Long: `Build a register from a bit string, apply gates in order, print the
outcome probabilities and measure the register.

Gates are given as name:qubit, for example:

  qsim run 00 --gate h:0 --gate x:1 --shots 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.build(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printProbabilities(out, c)

			if shots <= 1 {
				outcome, err := c.Measure()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nOutcome: %s\n", color.New(color.FgCyan, color.Bold).Sprint(outcome))
				return nil
			}

			counts, err := c.Sample(shots)
			if err != nil {
				return err
			}
			printCounts(out, counts, shots)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&flags.gates, "gate", "g", nil, "Gate to apply as name:qubit (repeatable)")
	cmd.Flags().IntVarP(&shots, "shots", "n", 1, "Number of measurements")
	cmd.Flags().BoolVar(&flags.born, "born", false, "Weight outcomes by |amplitude|^2 instead of |Re(amplitude^2)|")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Seed for reproducible measurements (0 uses the process source)")

	return cmd
}

// printProbabilities writes one bar per basis outcome
func printProbabilities(w io.Writer, c *quantum.Circuit) {
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	fmt.Fprintf(w, "Register %s (%d qubits, %s rule)\n", c.BitString(), c.NumQubits(), c.Rule())
	for _, op := range c.Operations() {
		gray.Fprintf(w, "  %s\n", op)
	}
	fmt.Fprintln(w)

	outcomes := quantum.Outcomes(c.NumQubits())
	for i, p := range c.Probabilities() {
		bar := strings.Repeat("█", int(p*barWidth+0.5))
		fmt.Fprintf(w, "%s %8.4f %s\n", outcomes[i], p, green.Sprint(bar))
	}
}

// printCounts writes the measurement histogram, most frequent first
func printCounts(w io.Writer, counts map[string]int, shots int) {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if counts[outcomes[i]] != counts[outcomes[j]] {
			return counts[outcomes[i]] > counts[outcomes[j]]
		}
		return outcomes[i] < outcomes[j]
	})

	cyan := color.New(color.FgCyan)
	fmt.Fprintf(w, "\nCounts over %d shots:\n", shots)
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%s %6d\n", cyan.Sprint(outcome), counts[outcome])
	}
	fmt.Fprintf(w, "Most frequent: %s\n", quantum.MostFrequentOutcome(counts))
}
