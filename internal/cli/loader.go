package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/patternmatch/strusmatch/internal/compiler"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCompile     = "E008" // Pattern compilation failed
)

// LoadError represents an error that occurred while loading or
// compiling a pattern source directory.
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

// LoadResult is the outcome of loading and compiling a pattern source
// directory: the compiled table (plus its originating Facade, for name
// resolution) and the raw CUE value the directory built.
type LoadResult struct {
	Compiled  compiler.CompileResult
	CUEValue  cue.Value
	FileCount int
}

// LoadPatterns walks dir for .cue files, builds the CUE package they
// form, and compiles the resulting patterns/options shape via
// compiler.LoadPatternSource. It is the CLI-facing counterpart of the
// builder facade driven imperatively: every command that needs a
// compiled program table starts here.
func LoadPatterns(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("pattern source directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing pattern source directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, convertCUEError(inst.Err, ErrCodeLoadFailed)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, convertCUEError(err, ErrCodeBuildFailed)
	}

	compiled, err := compiler.LoadPatternSource(value)
	if err != nil {
		return nil, convertCompileError(err)
	}

	return &LoadResult{Compiled: compiled, CUEValue: value, FileCount: len(cueFiles)}, nil
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

// convertCompileError maps a compiler.CompileError (or bare
// ir.BuildError) to a LoadError with source position, when available.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if stderrors.As(err, &compileErr) {
		return &LoadError{Code: ErrCodeCompile, Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message), Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeCompile, Message: err.Error()}
}

func convertCUEError(err error, code string) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &LoadError{Code: code, Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Code: code, Message: first.Error()}
}
