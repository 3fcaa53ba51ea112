package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opentrustprotocol/otp-go/canonical"
	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/seal"
)

// SealOptions holds flags for the seal command.
type SealOptions struct {
	*RootOptions
	Operator    string
	Weights     string
	ShowPayload bool
}

// SealResult holds the computed seal.
type SealResult struct {
	OperatorID string `json:"operator_id"`
	Seal       string `json:"seal"`
	Payload    string `json:"payload,omitempty"`
}

// NewSealCommand creates the seal command.
func NewSealCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seal <judgments.json>",
		Short: "Compute the conformance seal for a fusion",
		Long: `Compute the conformance seal an operator would store when fusing
the given judgments: the SHA-256 digest of the canonical payload built
from the inputs, the weights as passed, and the operator id.

--show-payload also prints the canonical payload, byte-for-byte, for
cross-implementation comparison.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Operator, "op", "cawa", "fusion operator (cawa|optimistic|pessimistic)")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "comma-separated weights, one per judgment (cawa only)")
	cmd.Flags().BoolVar(&opts.ShowPayload, "show-payload", false, "print the canonical payload")

	return cmd
}

func runSeal(opts *SealOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	inputs, err := readJudgments(path)
	if err != nil {
		return outputInputError(formatter, err)
	}

	operatorID, err := resolveOperatorID(opts.Operator)
	if err != nil {
		_ = formatter.Error(ErrCodeBadOperator, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving operator", err)
	}

	weights, err := parseWeights(opts.Weights)
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing weights", err)
	}

	digest, err := seal.Generate(inputs, weights, operatorID)
	if err != nil {
		exit := ExitCommandError
		if judgment.IsValidationError(err) {
			exit = ExitFailure
		}
		_ = formatter.Error(ErrCodeInvalidJudgment, err.Error(), nil)
		return WrapExitError(exit, "generating seal", err)
	}

	result := SealResult{OperatorID: operatorID, Seal: digest}
	if opts.ShowPayload {
		payload, err := canonical.Canonicalize(inputs, weights, operatorID)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "canonicalizing", err)
		}
		result.Payload = string(payload)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "operator: %s\n", result.OperatorID)
	fmt.Fprintf(formatter.Writer, "seal: %s\n", result.Seal)
	if opts.ShowPayload {
		fmt.Fprintf(formatter.Writer, "payload: %s\n", result.Payload)
	}
	return nil
}
