package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opentrustprotocol/otp-go/identity"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// IDOptions holds flags for the id command.
type IDOptions struct {
	*RootOptions
	Ensure bool
}

// IDResult holds the computed judgment id.
type IDResult struct {
	JudgmentID string `json:"judgment_id"`
}

// NewIDCommand creates the id command.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "id <judgment.json>",
		Short: "Compute a judgment's content-addressed id",
		Long: `Compute the content-addressed id of a judgment: the SHA-256 digest
of its canonical form with prior identity assignments stripped, so the
id is reproducible no matter how often it is assigned.

With --ensure the judgment is printed back with an identity provenance
entry carrying the id appended to its chain.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runID(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Ensure, "ensure", false, "append an identity entry carrying the id")

	return cmd
}

func runID(opts *IDOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	j, err := readJudgment(path)
	if err != nil {
		return outputInputError(formatter, err)
	}

	if opts.Ensure {
		withID, err := identity.EnsureJudgmentID(j)
		if err != nil {
			return outputIDError(formatter, err)
		}
		return outputJudgment(formatter, withID)
	}

	id, err := identity.GenerateJudgmentID(j)
	if err != nil {
		return outputIDError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(IDResult{JudgmentID: id})
	}
	fmt.Fprintln(formatter.Writer, id)
	return nil
}

func outputIDError(formatter *OutputFormatter, err error) error {
	exit := ExitCommandError
	if judgment.IsValidationError(err) {
		exit = ExitFailure
	}
	_ = formatter.Error(ErrCodeInvalidJudgment, err.Error(), nil)
	return WrapExitError(exit, "computing judgment id", err)
}
