package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/tsq/internal/ir"
)

// Memory holds a transition system in process memory.
//
// It enforces the same keys and references as the SQLite schema and
// reports the same error categories. Reads take a shared lock, so one
// ExistsPredicate call observes a single consistent snapshot.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	closed      bool
	states      map[int64]ir.State
	transitions map[ir.Transition]struct{}
	facts       map[int64]ir.Fact
	byState     map[int64][]int64 // state id -> fact ids in insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		states:      make(map[int64]ir.State),
		transitions: make(map[ir.Transition]struct{}),
		facts:       make(map[int64]ir.Fact),
		byState:     make(map[int64][]int64),
	}
}

// Close marks the store unavailable. Later calls fail with
// STORE_UNAVAILABLE.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) checkOpen(op string) error {
	if m.closed {
		return unavailable(op, "store is closed", nil)
	}
	return nil
}

// AddState inserts a state.
func (m *Memory) AddState(_ context.Context, st ir.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := fmt.Sprintf("add state %d", st.ID)
	if err := m.checkOpen(op); err != nil {
		return err
	}
	if err := m.checkState(op, st, nil); err != nil {
		return err
	}
	m.states[st.ID] = st
	return nil
}

// AddTransition inserts a directed edge.
func (m *Memory) AddTransition(_ context.Context, tr ir.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := fmt.Sprintf("add transition %d->%d", tr.From, tr.To)
	if err := m.checkOpen(op); err != nil {
		return err
	}
	if err := m.checkTransition(op, tr, nil, nil); err != nil {
		return err
	}
	m.transitions[tr] = struct{}{}
	return nil
}

// AddPredicate inserts a fact.
func (m *Memory) AddPredicate(_ context.Context, f ir.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := fmt.Sprintf("add fact %d", f.ID)
	if err := m.checkOpen(op); err != nil {
		return err
	}
	if err := m.checkFact(op, f, nil, nil); err != nil {
		return err
	}
	m.putFact(f)
	return nil
}

// Load inserts a whole system. Every row is checked before any is
// applied, so a failed Load leaves the store unchanged.
func (m *Memory) Load(_ context.Context, sys *ir.System) error {
	if sys == nil {
		return constraintViolation("load system", "system is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	op := fmt.Sprintf("load system %q", sys.Name)
	if err := m.checkOpen(op); err != nil {
		return err
	}

	// Rows staged by this load, checked alongside stored rows.
	newStates := make(map[int64]bool)
	newTransitions := make(map[ir.Transition]bool)
	newFacts := make(map[int64]bool)

	for _, st := range sys.States {
		if err := m.checkState(fmt.Sprintf("%s: state %d", op, st.ID), st, newStates); err != nil {
			return err
		}
		newStates[st.ID] = true
	}
	for _, tr := range sys.Transitions {
		if err := m.checkTransition(fmt.Sprintf("%s: transition %d->%d", op, tr.From, tr.To), tr, newStates, newTransitions); err != nil {
			return err
		}
		newTransitions[tr] = true
	}
	for _, f := range sys.Facts {
		if err := m.checkFact(fmt.Sprintf("%s: fact %d", op, f.ID), f, newStates, newFacts); err != nil {
			return err
		}
		newFacts[f.ID] = true
	}

	for _, st := range sys.States {
		m.states[st.ID] = st
	}
	for _, tr := range sys.Transitions {
		m.transitions[tr] = struct{}{}
	}
	for _, f := range sys.Facts {
		m.putFact(f)
	}
	return nil
}

func (m *Memory) putFact(f ir.Fact) {
	m.facts[f.ID] = f
	m.byState[f.StateID] = append(m.byState[f.StateID], f.ID)
}

func (m *Memory) hasState(id int64, staged map[int64]bool) bool {
	_, ok := m.states[id]
	return ok || staged[id]
}

func (m *Memory) checkState(op string, st ir.State, staged map[int64]bool) error {
	if st.ID < 0 {
		return constraintViolation(op, "state id %d is negative", st.ID)
	}
	if m.hasState(st.ID, staged) {
		return constraintViolation(op, "duplicate key: state %d already exists", st.ID)
	}
	return nil
}

func (m *Memory) checkTransition(op string, tr ir.Transition, stagedStates map[int64]bool, staged map[ir.Transition]bool) error {
	for _, id := range []int64{tr.From, tr.To} {
		if !m.hasState(id, stagedStates) {
			return constraintViolation(op, "references a nonexistent state: %d", id)
		}
	}
	if _, ok := m.transitions[tr]; ok || staged[tr] {
		return constraintViolation(op, "duplicate key: transition %d->%d already exists", tr.From, tr.To)
	}
	return nil
}

func (m *Memory) checkFact(op string, f ir.Fact, stagedStates, staged map[int64]bool) error {
	if _, ok := m.facts[f.ID]; ok || staged[f.ID] {
		return constraintViolation(op, "duplicate key: fact %d already exists", f.ID)
	}
	if !m.hasState(f.StateID, stagedStates) {
		return constraintViolation(op, "references a nonexistent state: %d", f.StateID)
	}
	return nil
}

// ExistsPredicate reports whether state stateID holds a fact with exactly
// the pattern's name and attribute tuple.
func (m *Memory) ExistsPredicate(_ context.Context, stateID int64, p ir.Pattern) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen(fmt.Sprintf("exists %s at state %d", p.Name, stateID)); err != nil {
		return false, err
	}
	for _, id := range m.byState[stateID] {
		if p.Matches(m.facts[id]) {
			return true, nil
		}
	}
	return false, nil
}

// ReadStates returns every state ordered by id.
func (m *Memory) ReadStates(_ context.Context) ([]ir.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen("read states"); err != nil {
		return nil, err
	}
	states := make([]ir.State, 0, len(m.states))
	for _, st := range m.states {
		states = append(states, st)
	}
	slices.SortFunc(states, func(a, b ir.State) int { return cmp.Compare(a.ID, b.ID) })
	return states, nil
}

// ReadInitialStates returns the ids of initial states in ascending order.
func (m *Memory) ReadInitialStates(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen("read initial states"); err != nil {
		return nil, err
	}
	ids := []int64{}
	for id, st := range m.states {
		if st.Initial {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// ReadTransitions returns every transition ordered by (from, to).
func (m *Memory) ReadTransitions(_ context.Context) ([]ir.Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen("read transitions"); err != nil {
		return nil, err
	}
	transitions := make([]ir.Transition, 0, len(m.transitions))
	for tr := range m.transitions {
		transitions = append(transitions, tr)
	}
	slices.SortFunc(transitions, func(a, b ir.Transition) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return transitions, nil
}

// Successors returns the targets of transitions leaving stateID in
// ascending order.
func (m *Memory) Successors(_ context.Context, stateID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen(fmt.Sprintf("successors of %d", stateID)); err != nil {
		return nil, err
	}
	ids := []int64{}
	for tr := range m.transitions {
		if tr.From == stateID {
			ids = append(ids, tr.To)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// ReadFacts returns the facts of one state ordered by fact id.
func (m *Memory) ReadFacts(_ context.Context, stateID int64) ([]ir.Fact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkOpen(fmt.Sprintf("read facts of %d", stateID)); err != nil {
		return nil, err
	}
	facts := make([]ir.Fact, 0, len(m.byState[stateID]))
	for _, id := range m.byState[stateID] {
		facts = append(facts, m.facts[id])
	}
	slices.SortFunc(facts, func(a, b ir.Fact) int { return cmp.Compare(a.ID, b.ID) })
	return facts, nil
}
