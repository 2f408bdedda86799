package formula

import "fmt"

// ValidationResult contains the outcome of structural formula checks.
type ValidationResult struct {
	// Valid is false when the formula cannot be evaluated at all.
	Valid bool

	// Errors lists problems that make evaluation impossible
	// (nil formulas or operands).
	Errors []string

	// Warnings lists legal but suspicious constructs, such as an empty
	// conjunction (always true) or an atom with an empty name.
	Warnings []string
}

// Validate checks a formula tree for structural problems.
//
// Validate is a pure function with no side effects. Paths in messages
// use the form "and[1].not" to locate the offending node.
func Validate(f Formula) ValidationResult {
	v := &validator{}
	v.visit(f, "formula")

	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) visit(f Formula, path string) {
	switch node := Unwrap(f).(type) {
	case nil:
		v.addError("%s: nil formula", path)
	case Atomic:
		if node.Name == "" {
			v.addWarning("%s: atom with empty name (%s)", path, attrsString(node.Attrs))
		}
	case Not:
		v.visit(node.Operand, path+".not")
	case And:
		if len(node.Operands) == 0 {
			v.addWarning("%s: empty conjunction is always true", path)
		}
		for i, op := range node.Operands {
			v.visit(op, fmt.Sprintf("%s.and[%d]", path, i))
		}
	case Or:
		if len(node.Operands) == 0 {
			v.addWarning("%s: empty disjunction is always false", path)
		}
		for i, op := range node.Operands {
			v.visit(op, fmt.Sprintf("%s.or[%d]", path, i))
		}
	default:
		v.addError("%s: unknown formula type %T", path, f)
	}
}
