// Package formula provides the boolean formula algebra evaluated by tsq.
//
// A Formula is a pure expression tree over facts. It is built independently
// of any state; the state is supplied only when the formula is evaluated.
// The same formula can therefore be checked against many states without
// reconstruction.
//
// # Variants
//
// Formula is a sealed interface using the marker method pattern. Only the
// types in this package implement it:
//
//   - Atomic: Name(a1, a2, a3) holds at the state (exact match, absent
//     matches only absent)
//   - Not: negation of one operand
//   - And: variadic conjunction (empty = true)
//   - Or: variadic disjunction (empty = false)
//
// Backends switch over the variants exhaustively:
//
//	switch f := formula.Unwrap(f).(type) {
//	case formula.Atomic:
//	case formula.Not:
//	case formula.And:
//	case formula.Or:
//	}
//
// Both value and pointer forms are accepted everywhere; Unwrap folds a
// pointer variant into its value form.
//
// # Values
//
// Attribute values are carried as ir.Attr and are never rendered into a
// query language by this package. Backends must pass them as bound
// parameters.
//
// # Text form
//
// String renders a formula in a small expression syntax that Parse reads
// back:
//
//	b("1") && !(c() || edge(null, "x"))
//
// null (or _) denotes an absent attribute. Trailing absent attributes may
// be omitted. true and false are the empty conjunction and disjunction.
package formula
