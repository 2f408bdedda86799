package formula

import "github.com/roach88/tsq/internal/ir"

// Formula is a boolean expression over facts.
//
// This is a sealed interface - only types in this package implement it.
type Formula interface {
	formulaNode() // Marker method - seals interface to this package
}

// Atomic tests for the existence of one fact at the evaluated state.
//
// Semantics at state s:
//
//	exists fact f with f.state = s, f.name = Name, f.attrs = Attrs
//
// Every slot is matched exactly. An absent slot matches only an absent
// slot; it is never a wildcard.
type Atomic struct {
	Name  string
	Attrs [ir.Arity]ir.Attr
}

func (Atomic) formulaNode() {}

// Pattern returns the fact pattern this atom tests for.
func (a Atomic) Pattern() ir.Pattern {
	return ir.Pattern{Name: a.Name, Attrs: a.Attrs}
}

func (a Atomic) String() string { return String(a) }

// Not is the negation of its operand.
type Not struct {
	Operand Formula
}

func (Not) formulaNode() {}

func (n Not) String() string { return String(n) }

// And is the conjunction of its operands.
//
// Semantics:
//
//	<operand1> AND <operand2> AND ... AND <operandN>
//
// An empty And is true (vacuous truth). Operand order never changes the
// result.
type And struct {
	Operands []Formula
}

func (And) formulaNode() {}

func (a And) String() string { return String(a) }

// Or is the disjunction of its operands.
//
// An empty Or is false. Operand order never changes the result.
type Or struct {
	Operands []Formula
}

func (Or) formulaNode() {}

func (o Or) String() string { return String(o) }

// Unwrap returns the value form of a pointer variant.
// A nil pointer unwraps to a nil Formula. Value variants are returned as is.
func Unwrap(f Formula) Formula {
	switch v := f.(type) {
	case *Atomic:
		if v == nil {
			return nil
		}
		return *v
	case *Not:
		if v == nil {
			return nil
		}
		return *v
	case *And:
		if v == nil {
			return nil
		}
		return *v
	case *Or:
		if v == nil {
			return nil
		}
		return *v
	default:
		return f
	}
}
