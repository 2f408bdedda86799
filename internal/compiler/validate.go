package compiler

import (
	"fmt"

	"github.com/roach88/tsq/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrNoStates            = "E200" // a system needs at least one state
	ErrNegativeStateID     = "E201" // state ids are non-negative
	ErrDuplicateStateID    = "E202" // state id declared twice
	ErrUnknownState        = "E203" // transition or fact names an undeclared state
	ErrDuplicateTransition = "E204" // (from, to) pair declared twice
	ErrDuplicateFactID     = "E205" // fact id declared twice
)

// ValidationError represents a system validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateSystem checks the key and reference rules a store enforces,
// so a system can be rejected before any row is written.
// Returns all errors found (does not fail-fast).
func ValidateSystem(sys *ir.System) []ValidationError {
	var errs []ValidationError
	prefix := "system." + sys.Name

	if len(sys.States) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".states",
			Message: "at least one state is required",
			Code:    ErrNoStates,
		})
	}

	states := make(map[int64]bool, len(sys.States))
	for i, st := range sys.States {
		field := fmt.Sprintf("%s.states[%d]", prefix, i)
		if st.ID < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("state id %d is negative", st.ID),
				Code:    ErrNegativeStateID,
			})
		}
		if states[st.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate state id %d", st.ID),
				Code:    ErrDuplicateStateID,
			})
		}
		states[st.ID] = true
	}

	transitions := make(map[ir.Transition]bool, len(sys.Transitions))
	for i, tr := range sys.Transitions {
		field := fmt.Sprintf("%s.transitions[%d]", prefix, i)
		if !states[tr.From] {
			errs = append(errs, unknownState(field+".from", tr.From))
		}
		if !states[tr.To] {
			errs = append(errs, unknownState(field+".to", tr.To))
		}
		if transitions[tr] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate transition %d->%d", tr.From, tr.To),
				Code:    ErrDuplicateTransition,
			})
		}
		transitions[tr] = true
	}

	facts := make(map[int64]bool, len(sys.Facts))
	for i, f := range sys.Facts {
		field := fmt.Sprintf("%s.facts[%d]", prefix, i)
		if !states[f.StateID] {
			errs = append(errs, unknownState(field+".state", f.StateID))
		}
		if facts[f.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate fact id %d", f.ID),
				Code:    ErrDuplicateFactID,
			})
		}
		facts[f.ID] = true
	}

	return errs
}

func unknownState(field string, id int64) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("state %d is not declared", id),
		Code:    ErrUnknownState,
	}
}
