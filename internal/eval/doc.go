// Package eval decides whether a formula holds at a state.
//
// The Evaluator interprets a formula tree recursively. Each atom becomes
// one existence query against the store; Not, And and Or combine the
// results. And and Or stop at the first operand that decides the result,
// so operand order can change how many queries run but never the answer.
//
// Semantics at state s:
//
//	Atomic(p)   holds iff the store has a fact matching p exactly at s
//	Not(f)      holds iff f does not hold
//	And(f...)   holds iff every operand holds (empty And holds)
//	Or(f...)    holds iff some operand holds (empty Or does not hold)
//
// A state id the store does not know makes every atom false. Transitions
// are never consulted: formulas are pinned to one state.
//
// When push-down is enabled and the store can evaluate whole formulas
// (see Checker), the tree is sent to the store as one query instead.
// Both paths return the same answer for every formula.
package eval
