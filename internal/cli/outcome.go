package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opentrustprotocol/otp-go/identity"
	"github.com/opentrustprotocol/otp-go/internal/journal"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// OutcomeOptions holds flags for the outcome command.
type OutcomeOptions struct {
	*RootOptions
	LinksTo string
	Type    string
	Oracle  string
	T       float64
	I       float64
	F       float64
	Journal string
}

// NewOutcomeCommand creates the outcome command.
func NewOutcomeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OutcomeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "outcome",
		Short: "Build an outcome judgment linked to a decision",
		Long: `Build an outcome judgment: a ground-truth observation linked back to
the decision judgment it grades. The outcome gets its own
content-addressed id. With --journal it is also recorded for later
calibration analysis.

The link is a weak reference; the decision need not be journaled yet.

Example:
  otp outcome --links-to <judgment-id> --type success --oracle settlement-oracle
  otp outcome --links-to <judgment-id> --type failure --oracle risk-oracle --t 0 --f 1 --journal ./otp.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutcome(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LinksTo, "links-to", "", "judgment id of the decision being graded (required)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "outcome type: success|failure|partial|unknown (required)")
	cmd.Flags().StringVar(&opts.Oracle, "oracle", "", "source that observed the result (required)")
	cmd.Flags().Float64Var(&opts.T, "t", 1.0, "outcome truth degree")
	cmd.Flags().Float64Var(&opts.I, "i", 0.0, "outcome indeterminacy degree")
	cmd.Flags().Float64Var(&opts.F, "f", 0.0, "outcome falsity degree")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the outcome in this journal database")
	_ = cmd.MarkFlagRequired("links-to")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("oracle")

	return cmd
}

func runOutcome(opts *OutcomeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	outcomeType, err := judgment.ParseOutcomeType(strings.ToUpper(opts.Type))
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing outcome type", err)
	}

	o, err := identity.NewOutcome(opts.LinksTo, opts.T, opts.I, opts.F, outcomeType, opts.Oracle)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidJudgment, err.Error(), nil)
		return WrapExitError(ExitFailure, "building outcome", err)
	}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal, journal.Config{Logger: opts.logger()})
		if err != nil {
			_ = formatter.Error(ErrCodeJournalFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening journal", err)
		}
		defer j.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		token, inserted, err := j.RecordOutcome(ctx, o)
		if err != nil {
			_ = formatter.Error(ErrCodeJournalFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording outcome", err)
		}
		opts.logger().Debug("outcome journaled",
			zap.String("judgment_id", o.JudgmentID()),
			zap.String("links_to", o.LinksToJudgmentID),
			zap.String("token", token),
			zap.Bool("inserted", inserted))
		formatter.VerboseLog("journaled %s (token %s)", o.JudgmentID(), token)
	}

	if formatter.Format == "json" {
		return formatter.Success(o)
	}
	fmt.Fprintf(formatter.Writer, "T=%g I=%g F=%g\n", o.T, o.I, o.F)
	fmt.Fprintf(formatter.Writer, "outcome_type: %s\n", o.OutcomeType)
	fmt.Fprintf(formatter.Writer, "oracle_source: %s\n", o.OracleSource)
	fmt.Fprintf(formatter.Writer, "links_to: %s\n", o.LinksToJudgmentID)
	fmt.Fprintf(formatter.Writer, "judgment_id: %s\n", o.JudgmentID())
	return nil
}
