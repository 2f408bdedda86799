package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidFormula(t *testing.T) {
	f := Conj(Pred("b", "1"), Negate(Disj(Pred("a"), Pred("c", "x"))))

	result := Validate(f)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_NilFormula(t *testing.T) {
	result := Validate(nil)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "nil formula")
}

func TestValidate_NilOperandPath(t *testing.T) {
	f := Conj(Pred("a"), Negate(nil))

	result := Validate(f)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "formula.and[1].not: nil formula", result.Errors[0])
}

func TestValidate_NilPointerOperand(t *testing.T) {
	var missing *Atomic
	result := Validate(Disj(Pred("a"), missing))

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "formula.or[1]")
}

func TestValidate_Warnings(t *testing.T) {
	f := Disj(True(), False(), Pred(""))

	result := Validate(f)

	assert.True(t, result.Valid, "warnings do not invalidate a formula")
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "always true")
	assert.Contains(t, result.Warnings[1], "always false")
	assert.Contains(t, result.Warnings[2], "empty name")
}
