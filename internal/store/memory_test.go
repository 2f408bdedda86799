package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/testutil"
)

func TestMemory_Violations(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AddState(ctx, ir.State{ID: 0}))
	require.NoError(t, m.AddPredicate(ctx, testutil.Fact(1, 0, "b", "0")))
	require.NoError(t, m.AddTransition(ctx, ir.Transition{From: 0, To: 0}))

	tests := []struct {
		name string
		err  error
	}{
		{"duplicate state", m.AddState(ctx, ir.State{ID: 0})},
		{"negative state", m.AddState(ctx, ir.State{ID: -3})},
		{"duplicate transition", m.AddTransition(ctx, ir.Transition{From: 0, To: 0})},
		{"dangling transition", m.AddTransition(ctx, ir.Transition{From: 0, To: 8})},
		{"duplicate fact", m.AddPredicate(ctx, testutil.Fact(1, 0, "c"))},
		{"dangling fact", m.AddPredicate(ctx, testutil.Fact(2, 8, "c"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsConstraintViolation(tt.err), "got %v", tt.err)
		})
	}
}

func TestMemory_LoadAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sys := testutil.FlipBit()
	sys.Transitions = append(sys.Transitions, ir.Transition{From: 0, To: 1})

	err := m.Load(ctx, sys)
	assert.True(t, IsConstraintViolation(err), "duplicate within one load: got %v", err)

	states, err := m.ReadStates(ctx)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestMemory_LoadNilSystem(t *testing.T) {
	err := NewMemory().Load(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err), "got %v", err)
}

func TestMemory_LoadSeesStagedStates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Facts and transitions may reference states declared in the same load
	require.NoError(t, m.Load(ctx, testutil.FlipBit()))

	succ, err := m.Successors(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, succ)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Load(ctx, testutil.FlipBit()))
	require.NoError(t, m.Close())

	_, err := m.ExistsPredicate(ctx, 1, pattern("b", "1"))
	assert.True(t, IsUnavailable(err), "got %v", err)

	err = m.AddState(ctx, ir.State{ID: 2})
	assert.True(t, IsUnavailable(err), "got %v", err)
}

// TestMemory_AgreesWithSQLite loads the same system into both stores and
// compares every read and every existence query.
func TestMemory_AgreesWithSQLite(t *testing.T) {
	ctx := context.Background()

	sys := &ir.System{
		Name:   "mixed",
		States: []ir.State{{ID: 5}, {ID: 0, Initial: true}, {ID: 2, Initial: true}},
		Transitions: []ir.Transition{
			{From: 2, To: 0}, {From: 0, To: 5}, {From: 0, To: 2}, {From: 5, To: 5},
		},
		Facts: []ir.Fact{
			testutil.Fact(10, 0, "p", "x"),
			testutil.Fact(3, 0, "p"),
			testutil.Fact(4, 2, "p", ""),
			testutil.Fact(7, 2, "q", "a", "b", "c"),
			{ID: 8, StateID: 5, Name: "q", Attrs: [ir.Arity]ir.Attr{ir.Val("a"), ir.Absent(), ir.Val("c")}},
			testutil.Fact(9, 5, "p", "x"),
		},
	}

	sqlite := createTestStore(t)
	require.NoError(t, sqlite.Load(ctx, sys))
	mem := NewMemory()
	require.NoError(t, mem.Load(ctx, sys))

	sqlStates, err := sqlite.ReadStates(ctx)
	require.NoError(t, err)
	memStates, err := mem.ReadStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, sqlStates, memStates)

	sqlInitial, err := sqlite.ReadInitialStates(ctx)
	require.NoError(t, err)
	memInitial, err := mem.ReadInitialStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, sqlInitial, memInitial)

	sqlTransitions, err := sqlite.ReadTransitions(ctx)
	require.NoError(t, err)
	memTransitions, err := mem.ReadTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, sqlTransitions, memTransitions)

	patterns := []ir.Pattern{
		pattern("p"),
		pattern("p", "x"),
		pattern("p", ""),
		pattern("q", "a", "b", "c"),
		pattern("q", "a"),
		{Name: "q", Attrs: [ir.Arity]ir.Attr{ir.Val("a"), ir.Absent(), ir.Val("c")}},
		pattern("r"),
	}

	for _, stateID := range []int64{0, 2, 5, 6} {
		sqlFacts, err := sqlite.ReadFacts(ctx, stateID)
		require.NoError(t, err)
		memFacts, err := mem.ReadFacts(ctx, stateID)
		require.NoError(t, err)
		assert.Equal(t, sqlFacts, memFacts, "facts of state %d", stateID)

		sqlSucc, err := sqlite.Successors(ctx, stateID)
		require.NoError(t, err)
		memSucc, err := mem.Successors(ctx, stateID)
		require.NoError(t, err)
		assert.Equal(t, sqlSucc, memSucc, "successors of state %d", stateID)

		for _, p := range patterns {
			want, err := sqlite.ExistsPredicate(ctx, stateID, p)
			require.NoError(t, err)
			got, err := mem.ExistsPredicate(ctx, stateID, p)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s%v at state %d", p.Name, p.Attrs, stateID)
		}
	}
}
