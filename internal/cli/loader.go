package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/opentrustprotocol/otp-go/internal/compiler"
	"github.com/opentrustprotocol/otp-go/mapper"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading mapper definitions from a
// directory.
type LoadResult struct {
	Mappers   []mapper.Mapper
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during definition
// loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadMapperDir loads and compiles CUE mapper definitions from a
// directory. Definitions live under the top-level "mapper" struct, one
// field per definition. Compilation here is structural; callers that
// need semantic validation run mapper.Validate on each result.
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadMapperDir(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("mapper directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing mapper directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	// Extract mapper definitions
	seen := make(map[string]string) // mapper id -> defining label
	mappersVal := value.LookupPath(cue.ParsePath("mapper"))
	if mappersVal.Exists() {
		iter, iterErr := mappersVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating mappers: %v", iterErr)})
			if mode == LoadModeFailFast {
				return result, errs
			}
		} else {
			for iter.Next() {
				label := iter.Label()
				m, compileErr := compiler.CompileMapper(iter.Value())
				if compileErr != nil {
					errs = append(errs, convertCompileError(compileErr, "mapper."+label))
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				if prev, dup := seen[m.MapperID()]; dup {
					errs = append(errs, &LoadError{
						Code:    ErrCodeMapperID,
						Message: fmt.Sprintf("mapper %s declares id %q already declared by %s", label, m.MapperID(), prev),
					})
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				seen[m.MapperID()] = label
				result.Mappers = append(result.Mappers, m)
			}
		}
	}

	// Check if we found anything
	if len(result.Mappers) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no mapper definitions found"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeParseFailed   = "E007" // Input file parse error
	ErrCodeJournalFailed = "E008" // Journal open/write error

	// Judgment and verification errors
	ErrCodeInvalidJudgment = "E101" // judgment fails validation
	ErrCodeFusionFailed    = "E102" // operator rejected the inputs
	ErrCodeBadOperator     = "E103" // unknown operator name
	ErrCodeNotVerified     = "E104" // conformance verification failed

	// Mapper definition errors
	ErrCodeMapperID      = "E111" // missing or duplicate mapper id
	ErrCodeMapperType    = "E112" // missing or unknown mapper type
	ErrCodeMapperAnchors = "E113" // numerical anchor errors
	ErrCodeMapperTriple  = "E114" // mapping/triple field errors
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "id":
		return ErrCodeMapperID
	case "type":
		return ErrCodeMapperType
	case "falsity_point", "indeterminacy_point", "truth_point", "anchors":
		return ErrCodeMapperAnchors
	}
	switch {
	case strings.HasPrefix(field, "mappings"),
		strings.HasPrefix(field, "true_map"),
		strings.HasPrefix(field, "false_map"),
		strings.HasPrefix(field, "default"):
		return ErrCodeMapperTriple
	}
	return ErrCodeGeneric
}
