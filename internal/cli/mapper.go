package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opentrustprotocol/otp-go/judgment"
	"github.com/opentrustprotocol/otp-go/mapper"
)

// NewMapperCommand creates the mapper command group.
func NewMapperCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapper",
		Short: "Work with mapper definitions",
		Long: `Load, validate, and evaluate CUE mapper definitions: the inbound
transformations that turn raw domain values into judgments.`,
	}

	cmd.AddCommand(newMapperValidateCommand(rootOpts))
	cmd.AddCommand(newMapperListCommand(rootOpts))
	cmd.AddCommand(newMapperEvalCommand(rootOpts))

	return cmd
}

// ValidationIssue is one problem found in a mapper definition.
type ValidationIssue struct {
	Mapper  string `json:"mapper,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

func newMapperValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <mapper-dir>",
		Short: "Validate mapper definitions",
		Long: `Validate CUE mapper definitions: structural compilation first, then
the semantic constraints (anchor orientation, triple ranges,
conservation).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapperValidate(rootOpts, args[0], cmd)
		},
	}
}

func runMapperValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadMapperDir(dir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var issues []ValidationIssue
	for _, err := range loadErrors {
		issues = append(issues, loadIssue(err))
	}
	for _, m := range loadResult.Mappers {
		formatter.VerboseLog("Validating mapper: %s", m.MapperID())
		for _, err := range mapper.Validate(m) {
			issues = append(issues, semanticIssue(m.MapperID(), err))
		}
	}

	if len(issues) > 0 {
		return outputValidationIssues(formatter, issues)
	}
	return outputMapperValidateSuccess(formatter)
}

// loadIssue converts a structural load error to a validation issue.
func loadIssue(err error) ValidationIssue {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{
			Message: loadErr.Message,
			Code:    loadErr.Code,
		}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Message: err.Error(), Code: ErrCodeGeneric}
}

// semanticIssue converts a mapper constraint violation to a validation
// issue.
func semanticIssue(mapperID string, err error) ValidationIssue {
	issue := ValidationIssue{
		Mapper:  mapperID,
		Message: err.Error(),
		Code:    ErrCodeGeneric,
	}
	var vErr *judgment.ValidationError
	if errors.As(err, &vErr) {
		issue.Field = vErr.Field
		issue.Code = MapFieldToErrorCode(vErr.Field)
	}
	return issue
}

func outputMapperValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ All mapper definitions valid")
	return nil
}

func outputValidationIssues(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.Mapper != "" {
			fmt.Fprintf(formatter.Writer, "mapper %s\n", issue.Mapper)
		} else if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}

// MapperInfo is one row of the mapper list.
type MapperInfo struct {
	ID   string      `json:"id"`
	Type mapper.Type `json:"type"`
}

func newMapperListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <mapper-dir>",
		Short:         "List mapper definitions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapperList(rootOpts, args[0], cmd)
		},
	}
}

func runMapperList(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, err := loadMappersFailFast(formatter, dir)
	if err != nil {
		return err
	}

	infos := make([]MapperInfo, 0, len(loadResult.Mappers))
	for _, m := range loadResult.Mappers {
		infos = append(infos, MapperInfo{ID: m.MapperID(), Type: m.MapperType()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", info.ID, info.Type)
	}
	return nil
}

// MapperEvalOptions holds flags for the mapper eval command.
type MapperEvalOptions struct {
	*RootOptions
	Mapper string
	Value  string
}

func newMapperEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MapperEvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <mapper-dir>",
		Short: "Apply a mapper to a raw value",
		Long: `Apply a named mapper to a raw value and print the resulting
judgment. The value is coerced per the mapper's type: numerical mappers
take a number, boolean mappers accept true/false, yes/no, or 1/0, and
categorical mappers take the category name.

Example:
  otp mapper eval ./mappers --mapper defi-health-factor --value 2.25`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMapperEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mapper, "mapper", "", "id of the mapper to apply (required)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "raw value to transform (required)")
	_ = cmd.MarkFlagRequired("mapper")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runMapperEval(opts *MapperEvalOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := loadMappersFailFast(formatter, dir)
	if err != nil {
		return err
	}

	var target mapper.Mapper
	for _, m := range loadResult.Mappers {
		if m.MapperID() == opts.Mapper {
			target = m
			break
		}
	}
	if target == nil {
		message := fmt.Sprintf("mapper %q not found in %s", opts.Mapper, dir)
		_ = formatter.Error(ErrCodeNotFound, message, nil)
		return NewExitError(ExitCommandError, message)
	}

	if errs := mapper.Validate(target); len(errs) > 0 {
		_ = formatter.Error(ErrCodeMapperTriple, errs[0].Error(), nil)
		return WrapExitError(ExitFailure, fmt.Sprintf("mapper %q is invalid", opts.Mapper), errs[0])
	}

	value, err := coerceEvalValue(target, opts.Value)
	if err != nil {
		_ = formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing value", err)
	}

	result, err := target.ApplyValue(value)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidJudgment, err.Error(), nil)
		return WrapExitError(ExitFailure, "applying mapper", err)
	}
	return outputJudgment(formatter, result)
}

// coerceEvalValue converts the raw --value string according to the
// mapper's input domain. Boolean mappers do their own string coercion.
func coerceEvalValue(m mapper.Mapper, raw string) (any, error) {
	if m.MapperType() == mapper.TypeNumerical {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("mapper %q expects a numeric value, got %q", m.MapperID(), raw)
		}
		return v, nil
	}
	return raw, nil
}

// loadMappersFailFast loads a mapper directory, reporting the first
// error in the formatter's format.
func loadMappersFailFast(formatter *OutputFormatter, dir string) (*LoadResult, error) {
	loadResult, loadErrors := LoadMapperDir(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return nil, NewExitError(ExitCommandError, loadErrors[0].Error())
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)
	return loadResult, nil
}
