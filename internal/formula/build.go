package formula

import (
	"fmt"

	"github.com/roach88/tsq/internal/ir"
)

// Atom builds an atomic test with an explicit attribute tuple.
func Atom(name string, a1, a2, a3 ir.Attr) Atomic {
	return Atomic{Name: name, Attrs: [ir.Arity]ir.Attr{a1, a2, a3}}
}

// Pred builds an atomic test from leading concrete values; remaining
// slots are absent.
//
// Pred panics if more than ir.Arity values are given. Use Atom or
// ir.Attrs when the values come from untrusted input.
func Pred(name string, values ...string) Atomic {
	attrs, err := ir.Attrs(values...)
	if err != nil {
		panic(fmt.Sprintf("formula.Pred(%q): %v", name, err))
	}
	return Atomic{Name: name, Attrs: attrs}
}

// Negate returns Not{f}.
func Negate(f Formula) Not {
	return Not{Operand: f}
}

// Conj returns the conjunction of fs.
func Conj(fs ...Formula) And {
	return And{Operands: fs}
}

// Disj returns the disjunction of fs.
func Disj(fs ...Formula) Or {
	return Or{Operands: fs}
}

// Implies returns !a || b.
func Implies(a, b Formula) Or {
	return Or{Operands: []Formula{Not{Operand: a}, b}}
}

// True returns the empty conjunction.
func True() And {
	return And{}
}

// False returns the empty disjunction.
func False() Or {
	return Or{}
}
