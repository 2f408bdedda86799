package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
)

// Limits that keep generated SQL inside SQLite's defaults
// (SQLITE_MAX_EXPR_DEPTH = 1000, SQLITE_MAX_VARIABLE_NUMBER = 32766).
const (
	MaxDepth  = 200
	MaxParams = 32766
)

// attrColumns are the positional attribute columns of the predicate table.
var attrColumns = [ir.Arity]string{"attr1", "attr2", "attr3"}

var (
	// ErrNilFormula is returned when a formula or one of its operands is nil.
	ErrNilFormula = errors.New("cannot compile nil formula")

	// ErrTooComplex is returned when a formula exceeds MaxDepth or
	// MaxParams. Such formulas are still valid; callers evaluate them
	// atom by atom instead.
	ErrTooComplex = errors.New("formula too complex for a single query")
)

// SQLCompiler compiles formulas to parameterized SQL for SQLite.
//
// CRITICAL: All values are parameterized (never interpolated). Predicate
// names, attribute values and state ids only ever appear as ? placeholders.
//
// CRITICAL: Absent attributes compile to IS NULL, concrete attributes to
// = ?. Absent is never a wildcard, and = NULL is never emitted.
//
// SQLCompiler is stateless and safe for concurrent use.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a formula pinned to stateID into a single-row scalar
// query returning 1 when the formula holds and 0 otherwise.
// Returns (sql, params, error) tuple.
//
// Example:
//
//	Compile(formula.Pred("b", "1"), 1)
//
// produces
//
//	SELECT EXISTS (SELECT 1 FROM predicate p JOIN state s ON s.state_id = p.state_id
//	  WHERE s.state_id = ? AND p.name = ? AND p.attr1 = ? AND p.attr2 IS NULL AND p.attr3 IS NULL)
//
// with params [1, "b", "1"]. An unknown stateID yields 0 for every atom.
func (c *SQLCompiler) Compile(f formula.Formula, stateID int64) (string, []any, error) {
	b := &builder{stateID: &stateID}
	expr, err := b.compile(f, 1)
	if err != nil {
		return "", nil, err
	}
	return "SELECT " + expr, b.params, nil
}

// CompileExists converts a single fact pattern at stateID into a scalar
// existence query. Equivalent to Compile of the corresponding atom.
func (c *SQLCompiler) CompileExists(stateID int64, p ir.Pattern) (string, []any, error) {
	return c.Compile(formula.Atomic{Name: p.Name, Attrs: p.Attrs}, stateID)
}

// CompileSatisfying converts a formula into a query returning the ids of
// every stored state where it holds.
//
// MANDATORY: Includes ORDER BY for deterministic results.
func (c *SQLCompiler) CompileSatisfying(f formula.Formula) (string, []any, error) {
	b := &builder{}
	expr, err := b.compile(f, 1)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT s.state_id FROM state s WHERE %s ORDER BY s.state_id ASC", expr)
	return sql, b.params, nil
}

// builder accumulates parameters while walking a formula.
//
// When stateID is set, atoms bind the state as a parameter. Otherwise
// atoms correlate with an outer "state s" row.
type builder struct {
	stateID *int64
	params  []any
}

func (b *builder) compile(f formula.Formula, depth int) (string, error) {
	if depth > MaxDepth {
		return "", fmt.Errorf("%w: nesting exceeds %d levels", ErrTooComplex, MaxDepth)
	}

	switch node := formula.Unwrap(f).(type) {
	case nil:
		return "", ErrNilFormula
	case formula.Atomic:
		return b.compileAtomic(node)
	case formula.Not:
		inner, err := b.compile(node.Operand, depth+1)
		if err != nil {
			return "", err
		}
		return "NOT " + inner, nil
	case formula.And:
		return b.compileJunction(node.Operands, " AND ", "1", depth)
	case formula.Or:
		return b.compileJunction(node.Operands, " OR ", "0", depth)
	default:
		return "", fmt.Errorf("unsupported formula type: %T", f)
	}
}

// compileJunction compiles a variadic AND/OR. An empty junction compiles
// to its identity literal (1 for AND, 0 for OR).
func (b *builder) compileJunction(ops []formula.Formula, sep, identity string, depth int) (string, error) {
	if len(ops) == 0 {
		return identity, nil
	}

	parts := make([]string, 0, len(ops))
	for i, op := range ops {
		sql, err := b.compile(op, depth+1)
		if errors.Is(err, ErrTooComplex) {
			return "", err
		}
		if err != nil {
			return "", fmt.Errorf("operand %d: %w", i, err)
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// compileAtomic compiles an atom to an EXISTS sub-query.
// CRITICAL: Values are NEVER interpolated - always parameterized.
func (b *builder) compileAtomic(a formula.Atomic) (string, error) {
	var sb strings.Builder
	if b.stateID != nil {
		sb.WriteString("EXISTS (SELECT 1 FROM predicate p JOIN state s ON s.state_id = p.state_id WHERE s.state_id = ?")
		b.params = append(b.params, *b.stateID)
	} else {
		sb.WriteString("EXISTS (SELECT 1 FROM predicate p WHERE p.state_id = s.state_id")
	}

	sb.WriteString(" AND p.name = ?")
	b.params = append(b.params, a.Name)

	for i, attr := range a.Attrs {
		sb.WriteString(" AND p.")
		sb.WriteString(attrColumns[i])
		if v, ok := attr.Get(); ok {
			sb.WriteString(" = ?")
			b.params = append(b.params, v)
		} else {
			sb.WriteString(" IS NULL")
		}
	}
	sb.WriteByte(')')

	if len(b.params) > MaxParams {
		return "", fmt.Errorf("%w: needs more than %d bound parameters", ErrTooComplex, MaxParams)
	}
	return sb.String(), nil
}
