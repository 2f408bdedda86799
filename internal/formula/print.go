package formula

import (
	"strconv"
	"strings"

	"github.com/roach88/tsq/internal/ir"
)

// String renders f in the text form read by Parse.
//
// Conjunctions and disjunctions with two or more operands are
// parenthesized when nested inside another connective. Trailing absent
// attributes are omitted. A nil formula renders as <nil>.
func String(f Formula) string {
	var b strings.Builder
	writeFormula(&b, f, false)
	return b.String()
}

// writeFormula renders f. nested is true when f is an operand of another
// connective.
func writeFormula(b *strings.Builder, f Formula, nested bool) {
	switch v := Unwrap(f).(type) {
	case nil:
		b.WriteString("<nil>")
	case Atomic:
		writeAtom(b, v)
	case Not:
		b.WriteByte('!')
		writeFormula(b, v.Operand, true)
	case And:
		writeJunction(b, v.Operands, " && ", "true", nested)
	case Or:
		writeJunction(b, v.Operands, " || ", "false", nested)
	}
}

func writeJunction(b *strings.Builder, ops []Formula, sep, empty string, nested bool) {
	switch len(ops) {
	case 0:
		b.WriteString(empty)
		return
	case 1:
		writeFormula(b, ops[0], nested)
		return
	}

	if nested {
		b.WriteByte('(')
	}
	for i, op := range ops {
		if i > 0 {
			b.WriteString(sep)
		}
		writeFormula(b, op, true)
	}
	if nested {
		b.WriteByte(')')
	}
}

func writeAtom(b *strings.Builder, a Atomic) {
	if isBareName(a.Name) {
		b.WriteString(a.Name)
	} else {
		b.WriteString(strconv.Quote(a.Name))
	}

	last := -1
	for i, attr := range a.Attrs {
		if !attr.IsAbsent() {
			last = i
		}
	}

	b.WriteByte('(')
	for i := 0; i <= last; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Attrs[i].String())
	}
	b.WriteByte(')')
}

// isBareName reports whether name can be written without quotes.
func isBareName(name string) bool {
	if name == "" || isKeyword(name) {
		return false
	}
	for i, r := range name {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	return true
}

func isKeyword(s string) bool {
	switch s {
	case "true", "false", "null", "_":
		return true
	}
	return false
}

func isIdentRune(r rune, first bool) bool {
	switch {
	case r == '_':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9', r == '.':
		return !first
	}
	return false
}

// attrsString renders an attribute tuple without trimming. Used in
// validation messages.
func attrsString(attrs [ir.Arity]ir.Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
