package testutil

import "github.com/roach88/tsq/internal/ir"

// FlipBit returns the two-state flip-bit system.
//
// State 0 holds b("0"), state 1 holds b("1"), both states are initial and
// each transitions to the other. A fresh value is returned on every call
// so tests may mutate it.
func FlipBit() *ir.System {
	return &ir.System{
		Name: "flipbit",
		States: []ir.State{
			{ID: 0, Initial: true},
			{ID: 1, Initial: true},
		},
		Transitions: []ir.Transition{
			{From: 0, To: 1},
			{From: 1, To: 0},
		},
		Facts: []ir.Fact{
			{ID: 1, StateID: 0, Name: "b", Attrs: [ir.Arity]ir.Attr{ir.Val("0")}},
			{ID: 2, StateID: 1, Name: "b", Attrs: [ir.Arity]ir.Attr{ir.Val("1")}},
		},
	}
}

// Fact builds a fact with leading concrete attribute values. Remaining
// slots are absent. Panics if more than ir.Arity values are given.
func Fact(id, stateID int64, name string, values ...string) ir.Fact {
	attrs, err := ir.Attrs(values...)
	if err != nil {
		panic(err)
	}
	return ir.Fact{ID: id, StateID: stateID, Name: name, Attrs: attrs}
}
