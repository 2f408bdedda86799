package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/tsq/internal/compiler"
	"github.com/roach88/tsq/internal/eval"
	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/store"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeLoadFailed     = "E004" // CUE load or compile failed
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeInvalidSystem  = "E010" // System failed validation
	ErrCodeStore          = "E020" // Store could not be opened
	ErrCodeConstraint     = "E021" // Store rejected a row
	ErrCodeUnavailable    = "E022" // Store unavailable during a query
	ErrCodeInvalidFormula = "E030" // Formula did not parse or validate
	ErrCodeCheckFailed    = "E_CHECK_FAILED"
	ErrCodeTestFailed     = "E_TEST_FAILED"
)

// LoadError represents an error that occurred while loading a system file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadSystems compiles every system in a CUE file.
// Returns a *LoadError for missing files and compile failures.
func LoadSystems(path string) ([]*ir.System, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	systems, err := compiler.LoadFile(path)
	if err != nil {
		return nil, compileLoadError(err)
	}
	return systems, nil
}

// LoadSystem compiles one system from a CUE file. With an empty name the
// file must define exactly one system.
func LoadSystem(path, name string) (*ir.System, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	sys, err := compiler.LoadSystemFile(path, name)
	if err != nil {
		return nil, compileLoadError(err)
	}
	return sys, nil
}

func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path), Err: err}
		}
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
	return nil
}

func compileLoadError(err error) *LoadError {
	var cErr *compiler.CompileError
	if errors.As(err, &cErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", cErr.Field, cErr.Message),
			Pos:     cErr.Pos,
			Err:     err,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
}

// openExistingStore opens a database that must already exist. store.Open
// would otherwise create an empty database at a mistyped path.
func openExistingStore(path string) (*store.Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

// errorCode maps an error to the CLI code reported for it.
func errorCode(err error) string {
	var loadErr *LoadError
	var parseErr *formula.ParseError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case errors.As(err, &parseErr), eval.IsInvalidFormula(err):
		return ErrCodeInvalidFormula
	case store.IsConstraintViolation(err):
		return ErrCodeConstraint
	case store.IsUnavailable(err):
		return ErrCodeUnavailable
	default:
		return ErrCodeGeneric
	}
}

// failWith reports err and returns it as a command error (exit code 2).
func failWith(f *OutputFormatter, message string, err error) error {
	return f.Fail(ExitCommandError, errorCode(err), message, err)
}
