package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/tsq/internal/ir"
)

func TestAtomic_ImplementsFormula(t *testing.T) {
	var f Formula = Pred("b", "1")

	switch f.(type) {
	case Atomic:
		// Expected
	case Not, And, Or:
		t.Fatal("unexpected type")
	}
}

func TestAtom_ExplicitSlots(t *testing.T) {
	a := Atom("edge", ir.Val("x"), ir.Absent(), ir.Val(""))

	assert.Equal(t, "edge", a.Name)
	assert.True(t, a.Attrs[0].Equal(ir.Val("x")))
	assert.True(t, a.Attrs[1].IsAbsent())
	assert.True(t, a.Attrs[2].Equal(ir.Val("")))
}

func TestPred_PadsWithAbsent(t *testing.T) {
	a := Pred("b", "1")

	assert.Equal(t, ir.Pattern{Name: "b", Attrs: [ir.Arity]ir.Attr{ir.Val("1")}}, a.Pattern())
}

func TestPred_PanicsOnTooManyValues(t *testing.T) {
	assert.Panics(t, func() { Pred("p", "a", "b", "c", "d") })
}

func TestConstructors(t *testing.T) {
	a, b := Pred("a"), Pred("b")

	assert.Equal(t, Not{Operand: a}, Negate(a))
	assert.Equal(t, And{Operands: []Formula{a, b}}, Conj(a, b))
	assert.Equal(t, Or{Operands: []Formula{a, b}}, Disj(a, b))
	assert.Equal(t, Or{Operands: []Formula{Not{Operand: a}, b}}, Implies(a, b))
	assert.Empty(t, True().Operands)
	assert.Empty(t, False().Operands)
}

func TestUnwrap(t *testing.T) {
	a := Pred("b", "1")
	n := Negate(a)
	c := Conj(a)
	d := Disj(a)

	assert.Equal(t, a, Unwrap(&a))
	assert.Equal(t, n, Unwrap(&n))
	assert.Equal(t, c, Unwrap(&c))
	assert.Equal(t, d, Unwrap(&d))
	assert.Equal(t, a, Unwrap(a))

	var nilAtom *Atomic
	assert.Nil(t, Unwrap(nilAtom))
	assert.Nil(t, Unwrap(nil))
}
