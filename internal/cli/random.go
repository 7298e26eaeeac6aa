package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jaskrrish/Go-QSim/internal/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/crypto"
)

// newRandomCmd creates the random command
func newRandomCmd() *cobra.Command {
	var (
		numBytes int
		width    int
		method   string
		security int
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate random bytes by measuring qubits in superposition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := crypto.ParseExtractionMethod(method)
			if err != nil {
				return err
			}

			qrng, err := qsim.NewQRNG(width, m)
			if err != nil {
				return err
			}
			if security < 0 || security > crypto.MaxSecurityParameter {
				return fmt.Errorf("security parameter must be between 0 and %d", crypto.MaxSecurityParameter)
			}
			qrng.SetSecurityParameter(security)

			result, err := qrng.Generate(numBytes)
			if err != nil {
				return err
			}

			if !result.Healthy {
				return fmt.Errorf("%s", result.Message)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, hex.EncodeToString(result.Bytes))

			if verbose {
				gray := color.New(color.FgHiBlack)
				gray.Fprintf(cmd.ErrOrStderr(), "raw bits: %d  ones: %.2f%%  entropy: %.4f/bit  min-entropy: %.4f/bit  method: %s\n",
					result.RawBitLength, result.Bias*100, result.Entropy, result.MinEntropy, m)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&numBytes, "bytes", "b", 32, "Number of bytes to generate")
	cmd.Flags().IntVarP(&width, "width", "w", qsim.DefaultQRNGWidth, "Register width in qubits")
	cmd.Flags().StringVar(&method, "method", string(crypto.SHA3_256Method), "Extraction hash: SHA256, SHA512, SHA3-256, SHA3-512")
	cmd.Flags().IntVar(&security, "security", crypto.DefaultSecurityParameter, "Entropy bits withheld by the extractor")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print source statistics to stderr")

	return cmd
}
