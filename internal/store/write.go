package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tsq/internal/ir"
)

// execer is the subset of *sql.DB and *sql.Tx used by the insert helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AddState inserts a state.
// Fails with CONSTRAINT_VIOLATION if the id is negative or already stored.
func (s *Store) AddState(ctx context.Context, st ir.State) error {
	op := fmt.Sprintf("add state %d", st.ID)
	if err := s.checkOpen(op); err != nil {
		return err
	}
	return insertState(ctx, s.db, op, st)
}

// AddTransition inserts a directed edge.
// Fails with CONSTRAINT_VIOLATION if either endpoint is not a stored state
// or the (from, to) pair already exists. Self-loops are allowed.
func (s *Store) AddTransition(ctx context.Context, tr ir.Transition) error {
	op := fmt.Sprintf("add transition %d->%d", tr.From, tr.To)
	if err := s.checkOpen(op); err != nil {
		return err
	}
	return insertTransition(ctx, s.db, op, tr)
}

// AddPredicate inserts a fact.
// Fails with CONSTRAINT_VIOLATION if the fact id is already stored or the
// fact's state does not exist. Facts with identical content under
// different ids are accepted.
func (s *Store) AddPredicate(ctx context.Context, f ir.Fact) error {
	op := fmt.Sprintf("add fact %d", f.ID)
	if err := s.checkOpen(op); err != nil {
		return err
	}
	return insertFact(ctx, s.db, op, f)
}

// Load inserts a whole system in one transaction: states first, then
// transitions, then facts. Either every row is stored or none is.
// A nil system is a CONSTRAINT_VIOLATION.
func (s *Store) Load(ctx context.Context, sys *ir.System) error {
	if sys == nil {
		return constraintViolation("load system", "system is nil")
	}
	op := fmt.Sprintf("load system %q", sys.Name)
	if err := s.checkOpen(op); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op+": begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, st := range sys.States {
		if err := insertState(ctx, tx, fmt.Sprintf("%s: state %d", op, st.ID), st); err != nil {
			return err
		}
	}
	for _, tr := range sys.Transitions {
		if err := insertTransition(ctx, tx, fmt.Sprintf("%s: transition %d->%d", op, tr.From, tr.To), tr); err != nil {
			return err
		}
	}
	for _, f := range sys.Facts {
		if err := insertFact(ctx, tx, fmt.Sprintf("%s: fact %d", op, f.ID), f); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(op+": commit", err)
	}
	return nil
}

func insertState(ctx context.Context, ex execer, op string, st ir.State) error {
	if st.ID < 0 {
		return constraintViolation(op, "state id %d is negative", st.ID)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO state (state_id, is_initial)
		VALUES (?, ?)
	`, st.ID, st.Initial)
	return classify(op, err)
}

func insertTransition(ctx context.Context, ex execer, op string, tr ir.Transition) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO transition (from_state, to_state)
		VALUES (?, ?)
	`, tr.From, tr.To)
	return classify(op, err)
}

// insertFact binds each attribute through ir.Attr's driver.Valuer, so
// absent slots are stored as NULL.
func insertFact(ctx context.Context, ex execer, op string, f ir.Fact) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO predicate (fact_id, state_id, name, attr1, attr2, attr3)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, f.StateID, f.Name, f.Attrs[0], f.Attrs[1], f.Attrs[2])
	return classify(op, err)
}
