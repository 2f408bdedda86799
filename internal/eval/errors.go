package eval

import (
	"errors"
	"fmt"
	"strings"
)

// EvalError reports a formula that cannot be evaluated.
//
// Store failures are not wrapped in EvalError; they are returned as the
// store reported them.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// StateID is the state the formula was evaluated at.
	StateID int64
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeInvalidFormula indicates a nil formula or nil operand.
	ErrCodeInvalidFormula EvalErrorCode = "INVALID_FORMULA"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s (state=%d)", e.Code, e.Message, e.StateID)
}

// IsInvalidFormula returns true if the error is an INVALID_FORMULA error.
// Uses errors.As to handle wrapped errors.
func IsInvalidFormula(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidFormula
	}
	return false
}

func newInvalidFormulaError(stateID int64, problems []string) *EvalError {
	return &EvalError{
		Code:    ErrCodeInvalidFormula,
		Message: strings.Join(problems, "; "),
		StateID: stateID,
	}
}
