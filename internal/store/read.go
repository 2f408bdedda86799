package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
)

// ExistsPredicate reports whether state stateID holds a fact with exactly
// the pattern's name and attribute tuple. Absent slots match only NULL.
//
// A stateID that names no stored state yields false, not an error.
func (s *Store) ExistsPredicate(ctx context.Context, stateID int64, p ir.Pattern) (bool, error) {
	op := fmt.Sprintf("exists %s at state %d", p.Name, stateID)
	if err := s.checkOpen(op); err != nil {
		return false, err
	}

	query, params, err := s.compiler.CompileExists(stateID, p)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return s.queryTruth(ctx, op, query, params)
}

// Holds evaluates a whole formula at stateID with a single query.
// Agrees with recursive evaluation over ExistsPredicate for every formula
// it accepts. Formulas beyond querysql.MaxDepth or querysql.MaxParams
// fail with an error wrapping querysql.ErrTooComplex.
func (s *Store) Holds(ctx context.Context, f formula.Formula, stateID int64) (bool, error) {
	op := fmt.Sprintf("holds at state %d", stateID)
	if err := s.checkOpen(op); err != nil {
		return false, err
	}

	query, params, err := s.compiler.Compile(f, stateID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return s.queryTruth(ctx, op, query, params)
}

func (s *Store) queryTruth(ctx context.Context, op, query string, params []any) (bool, error) {
	var truth int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&truth); err != nil {
		return false, classify(op, err)
	}
	return truth != 0, nil
}

// SatisfyingStates returns the ids of every stored state where f holds,
// in ascending order. Fails with querysql.ErrTooComplex like Holds.
//
// Returns empty slice (not nil) if no state satisfies f.
func (s *Store) SatisfyingStates(ctx context.Context, f formula.Formula) ([]int64, error) {
	const op = "satisfying states"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	query, params, err := s.compiler.CompileSatisfying(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.queryIDs(ctx, op, query, params...)
}

// ReadStates returns every state ordered by id.
//
// Returns empty slice (not nil) if the store holds no states.
func (s *Store) ReadStates(ctx context.Context) ([]ir.State, error) {
	const op = "read states"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT state_id, is_initial
		FROM state
		ORDER BY state_id ASC
	`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	states := []ir.State{}
	for rows.Next() {
		var st ir.State
		if err := rows.Scan(&st.ID, &st.Initial); err != nil {
			return nil, classify(op+": scan", err)
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op+": iterate", err)
	}
	return states, nil
}

// ReadInitialStates returns the ids of initial states in ascending order.
func (s *Store) ReadInitialStates(ctx context.Context) ([]int64, error) {
	const op = "read initial states"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.queryIDs(ctx, op, `
		SELECT state_id
		FROM state
		WHERE is_initial = 1
		ORDER BY state_id ASC
	`)
}

// ReadTransitions returns every transition ordered by (from, to).
//
// Transitions are kept for inspection; formula evaluation never reads them.
func (s *Store) ReadTransitions(ctx context.Context) ([]ir.Transition, error) {
	const op = "read transitions"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT from_state, to_state
		FROM transition
		ORDER BY from_state ASC, to_state ASC
	`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	transitions := []ir.Transition{}
	for rows.Next() {
		var tr ir.Transition
		if err := rows.Scan(&tr.From, &tr.To); err != nil {
			return nil, classify(op+": scan", err)
		}
		transitions = append(transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op+": iterate", err)
	}
	return transitions, nil
}

// Successors returns the targets of transitions leaving stateID in
// ascending order.
func (s *Store) Successors(ctx context.Context, stateID int64) ([]int64, error) {
	op := fmt.Sprintf("successors of %d", stateID)
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.queryIDs(ctx, op, `
		SELECT to_state
		FROM transition
		WHERE from_state = ?
		ORDER BY to_state ASC
	`, stateID)
}

// Predecessors returns the sources of transitions entering stateID in
// ascending order.
func (s *Store) Predecessors(ctx context.Context, stateID int64) ([]int64, error) {
	op := fmt.Sprintf("predecessors of %d", stateID)
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.queryIDs(ctx, op, `
		SELECT from_state
		FROM transition
		WHERE to_state = ?
		ORDER BY from_state ASC
	`, stateID)
}

// ReadFacts returns the facts of one state ordered by fact id.
func (s *Store) ReadFacts(ctx context.Context, stateID int64) ([]ir.Fact, error) {
	op := fmt.Sprintf("read facts of %d", stateID)
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.queryFacts(ctx, op, `
		SELECT fact_id, state_id, name, attr1, attr2, attr3
		FROM predicate
		WHERE state_id = ?
		ORDER BY fact_id ASC
	`, stateID)
}

// ReadAllFacts returns every fact ordered by fact id.
func (s *Store) ReadAllFacts(ctx context.Context) ([]ir.Fact, error) {
	const op = "read facts"
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.queryFacts(ctx, op, `
		SELECT fact_id, state_id, name, attr1, attr2, attr3
		FROM predicate
		ORDER BY fact_id ASC
	`)
}

func (s *Store) queryFacts(ctx context.Context, op, query string, args ...any) ([]ir.Fact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	facts := []ir.Fact{}
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, classify(op+": scan", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op+": iterate", err)
	}
	return facts, nil
}

// scanFact reads one predicate row. NULL attributes scan as absent.
func scanFact(rows *sql.Rows) (ir.Fact, error) {
	var f ir.Fact
	err := rows.Scan(&f.ID, &f.StateID, &f.Name, &f.Attrs[0], &f.Attrs[1], &f.Attrs[2])
	return f, err
}

func (s *Store) queryIDs(ctx context.Context, op, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(op+": scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op+": iterate", err)
	}
	return ids, nil
}
