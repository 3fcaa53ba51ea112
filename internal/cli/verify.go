package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opentrustprotocol/otp-go/conformance"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Inputs  string
	Weights string
	Strict  bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <fused.json>",
		Short: "Verify a fused judgment against its claimed inputs",
		Long: `Verify that a fused judgment's conformance seal matches the claimed
inputs and that re-running the sealed operator reproduces the claimed
output.

Exit code 0 means VERIFIED; any other status exits 1. With --strict the
failure is also reported as a conformance violation error.

Example:
  otp verify fused.json --inputs sensors.json --weights 0.4,0.3,0.3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Inputs, "inputs", "", "path to the claimed input judgments (required)")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "comma-separated weights as passed to the fusion")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat any non-verified status as a conformance violation")
	_ = cmd.MarkFlagRequired("inputs")

	return cmd
}

func runVerify(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Loose reads: the verifier classifies malformed documents itself.
	fused, err := readJudgmentLoose(path)
	if err != nil {
		return outputInputError(formatter, err)
	}
	inputs, err := readJudgmentsLoose(opts.Inputs)
	if err != nil {
		return outputInputError(formatter, err)
	}
	weights, err := parseWeights(opts.Weights)
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing weights", err)
	}

	formatter.VerboseLog("verifying against %d claimed input(s)", len(inputs))

	result := conformance.Verify(fused, inputs, weights)
	if result.Verified() {
		return outputVerified(formatter, result)
	}

	if opts.Strict {
		err := conformance.MustConform(fused, inputs, weights)
		_ = formatter.Error(ErrCodeNotVerified, err.Error(), result)
		return WrapExitError(ExitFailure, "conformance violation", err)
	}
	return outputNotVerified(formatter, result)
}

func outputVerified(formatter *OutputFormatter, result conformance.Result) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, "✓ VERIFIED")
	fmt.Fprintf(formatter.Writer, "operator: %s\n", result.OperatorID)
	fmt.Fprintf(formatter.Writer, "seal: %s\n", result.Seal)
	return nil
}

func outputNotVerified(formatter *OutputFormatter, result conformance.Result) error {
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeNotVerified, string(result.Status), result)
		return NewExitError(ExitFailure, fmt.Sprintf("not verified: %s", result.Status))
	}

	fmt.Fprintf(formatter.Writer, "✗ NOT VERIFIED (%s)\n", result.Status)
	if result.Message != "" {
		fmt.Fprintf(formatter.Writer, "  %s\n", result.Message)
	}
	if result.Seal != "" {
		fmt.Fprintf(formatter.Writer, "  stored seal:     %s\n", result.Seal)
	}
	if result.RecomputedSeal != "" && result.RecomputedSeal != result.Seal {
		fmt.Fprintf(formatter.Writer, "  recomputed seal: %s\n", result.RecomputedSeal)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("not verified: %s", result.Status))
}
