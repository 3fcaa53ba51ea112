package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opentrustprotocol/otp-go/internal/journal"
	"github.com/opentrustprotocol/otp-go/judgment"
)

// CalibrateOptions holds flags for the calibrate command.
type CalibrateOptions struct {
	*RootOptions
	Journal  string
	Oracle   string
	Type     string
	Decision string
	Limit    int
}

// verdictOrder fixes the order verdict counts are printed in.
var verdictOrder = []journal.Verdict{
	journal.VerdictWellCalibrated,
	journal.VerdictUnderconfident,
	journal.VerdictOverconfident,
	journal.VerdictNeutral,
}

// NewCalibrateCommand creates the calibrate command.
func NewCalibrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalibrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Grade journaled decisions against their outcomes",
		Long: `Join journaled decisions to the outcomes that grade them and report
calibration: how the trust each decision claimed compares with what the
oracles later observed.

Example:
  otp calibrate --journal ./otp.db
  otp calibrate --journal ./otp.db --oracle settlement-oracle --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalibrate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal database (required)")
	cmd.Flags().StringVar(&opts.Oracle, "oracle", "", "only outcomes reported by this oracle")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only outcomes of this type (success|failure|partial|unknown)")
	cmd.Flags().StringVar(&opts.Decision, "decision", "", "only outcomes grading this decision id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "cap the number of graded pairs (0 = no cap)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runCalibrate(opts *CalibrateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening a missing path would create an empty database; a
	// calibration report over nothing hides the real mistake.
	if _, err := os.Stat(opts.Journal); os.IsNotExist(err) {
		message := fmt.Sprintf("journal database not found: %s", opts.Journal)
		_ = formatter.Error(ErrCodeNotFound, message, nil)
		return NewExitError(ExitCommandError, message)
	}

	filter := journal.CalibrationFilter{
		OracleSource: opts.Oracle,
		DecisionID:   opts.Decision,
		Limit:        opts.Limit,
	}
	if opts.Type != "" {
		outcomeType, err := judgment.ParseOutcomeType(strings.ToUpper(opts.Type))
		if err != nil {
			_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "parsing outcome type", err)
		}
		filter.OutcomeType = outcomeType
	}

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

	report, err := j.Calibrate(ctx, filter)
	if err != nil {
		_ = formatter.Error(ErrCodeJournalFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "calibrating", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return outputCalibrationText(formatter, report)
}

func outputCalibrationText(formatter *OutputFormatter, report journal.CalibrationReport) error {
	if report.Total == 0 {
		fmt.Fprintln(formatter.Writer, "no graded decision/outcome pairs")
		return nil
	}

	for _, row := range report.Rows {
		fmt.Fprintf(formatter.Writer, "%-15s  decision %s  T=%.2f -> outcome T=%.2f  (%s via %s)\n",
			row.Verdict, shortID(row.DecisionID), row.DecisionT, row.OutcomeT,
			row.OutcomeType, row.OracleSource)
	}

	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "%d graded pair(s), mean abs delta %.3f\n", report.Total, report.MeanAbsDelta)
	for _, verdict := range verdictOrder {
		if count := report.Verdicts[verdict]; count > 0 {
			fmt.Fprintf(formatter.Writer, "  %s: %d\n", verdict, count)
		}
	}
	return nil
}

// shortID abbreviates a 64-char judgment id for table output.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
