package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/querysql"
)

// Store answers single fact-pattern queries.
//
// Implemented by *store.Store and *store.Memory.
type Store interface {
	ExistsPredicate(ctx context.Context, stateID int64, p ir.Pattern) (bool, error)
}

// Checker evaluates a whole formula in one call.
//
// Implemented by *store.Store. Used only when push-down is enabled.
type Checker interface {
	Holds(ctx context.Context, f formula.Formula, stateID int64) (bool, error)
}

// Evaluator evaluates formulas against a Store.
//
// An Evaluator holds no evaluation state between calls and is safe for
// concurrent use when its Store is.
type Evaluator struct {
	store    Store
	logger   *slog.Logger
	pushdown bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger for debug tracing.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPushdown makes Evaluate send whole formulas to stores that
// implement Checker. Stores without Checker, and formulas too large for
// a single query (querysql.ErrTooComplex), are still evaluated
// recursively.
//
// Default: off
func WithPushdown(enabled bool) Option {
	return func(e *Evaluator) {
		e.pushdown = enabled
	}
}

// New creates an Evaluator over s.
func New(s Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate reports whether f holds at stateID.
//
// Returns an INVALID_FORMULA EvalError if f or any operand is nil. Store
// errors (for example STORE_UNAVAILABLE) are returned unchanged, so
// store.IsUnavailable holds on them. A missing state is not an error;
// every atom is false there.
func (e *Evaluator) Evaluate(ctx context.Context, f formula.Formula, stateID int64) (bool, error) {
	if result := formula.Validate(f); !result.Valid {
		return false, newInvalidFormulaError(stateID, result.Errors)
	}

	if e.pushdown {
		if checker, ok := e.store.(Checker); ok {
			e.logger.Debug("evaluating formula by push-down",
				"state", stateID,
				"formula", formula.String(f),
			)
			holds, err := checker.Holds(ctx, f, stateID)
			if !errors.Is(err, querysql.ErrTooComplex) {
				return holds, err
			}
			e.logger.Debug("push-down declined, evaluating recursively",
				"state", stateID,
				"reason", err.Error(),
			)
		}
	}

	return e.eval(ctx, f, stateID)
}

func (e *Evaluator) eval(ctx context.Context, f formula.Formula, stateID int64) (bool, error) {
	switch node := formula.Unwrap(f).(type) {
	case formula.Atomic:
		holds, err := e.store.ExistsPredicate(ctx, stateID, node.Pattern())
		if err != nil {
			return false, err
		}
		e.logger.Debug("atom evaluated",
			"state", stateID,
			"atom", node.String(),
			"holds", holds,
		)
		return holds, nil

	case formula.Not:
		holds, err := e.eval(ctx, node.Operand, stateID)
		if err != nil {
			return false, err
		}
		return !holds, nil

	case formula.And:
		for _, op := range node.Operands {
			holds, err := e.eval(ctx, op, stateID)
			if err != nil {
				return false, err
			}
			if !holds {
				return false, nil
			}
		}
		return true, nil

	case formula.Or:
		for _, op := range node.Operands {
			holds, err := e.eval(ctx, op, stateID)
			if err != nil {
				return false, err
			}
			if holds {
				return true, nil
			}
		}
		return false, nil

	default:
		// Validate rejects nil and foreign types before recursion starts.
		return false, fmt.Errorf("unsupported formula type: %T", f)
	}
}

// Satisfying returns the states among stateIDs where f holds, in input
// order. Duplicates in stateIDs are kept.
//
// Returns empty slice (not nil) if f holds nowhere.
func (e *Evaluator) Satisfying(ctx context.Context, f formula.Formula, stateIDs []int64) ([]int64, error) {
	out := []int64{}
	for _, id := range stateIDs {
		holds, err := e.Evaluate(ctx, f, id)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", id, err)
		}
		if holds {
			out = append(out, id)
		}
	}
	return out, nil
}
