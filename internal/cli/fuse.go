package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opentrustprotocol/otp-go/internal/journal"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// FuseOptions holds flags for the fuse command.
type FuseOptions struct {
	*RootOptions
	Operator string
	Weights  string
	Journal  string
}

// NewFuseCommand creates the fuse command.
func NewFuseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FuseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fuse <judgments.json>",
		Short: "Fuse judgments and seal the result",
		Long: `Fuse a JSON array of judgments under the named operator.

The fused judgment carries a conformance seal over the inputs and the
operator id, plus a content-addressed judgment id. With --journal the
fused judgment is also recorded as a decision.

Example:
  otp fuse --op cawa --weights 0.4,0.3,0.3 sensors.json
  otp fuse --op pessimistic sensors.json --journal ./otp.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Operator, "op", "cawa", "fusion operator (cawa|optimistic|pessimistic)")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "comma-separated weights, one per judgment (cawa only)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the fused judgment in this journal database")

	return cmd
}

func runFuse(opts *FuseOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	inputs, err := readJudgments(path)
	if err != nil {
		return outputInputError(formatter, err)
	}

	op, err := resolveOperator(opts.Operator)
	if err != nil {
		_ = formatter.Error(ErrCodeBadOperator, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolving operator", err)
	}

	weights, err := parseWeights(opts.Weights)
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing weights", err)
	}

	formatter.VerboseLog("fusing %d judgment(s) with %s", len(inputs), op.ID())

	fused, err := op.Fuse(inputs, weights)
	if err != nil {
		_ = formatter.Error(ErrCodeFusionFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "fusion failed", err)
	}

	if opts.Journal != "" {
		if err := journalDecision(opts.RootOptions, opts.Journal, fused, formatter, cmd); err != nil {
			return err
		}
	}

	return outputJudgment(formatter, fused)
}

// journalDecision records a fused judgment in the journal database.
func journalDecision(opts *RootOptions, path string, fused judgment.Judgment, formatter *OutputFormatter, cmd *cobra.Command) error {
	j, err := journal.Open(path, journal.Config{Logger: opts.logger()})
	if err != nil {
		_ = formatter.Error(ErrCodeJournalFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	token, inserted, err := j.RecordJudgment(ctx, fused)
	if err != nil {
		_ = formatter.Error(ErrCodeJournalFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "recording judgment", err)
	}
	opts.logger().Debug("decision journaled",
		zap.String("judgment_id", fused.JudgmentID()),
		zap.String("token", token),
		zap.Bool("inserted", inserted))
	formatter.VerboseLog("journaled %s (token %s)", fused.JudgmentID(), token)
	return nil
}
