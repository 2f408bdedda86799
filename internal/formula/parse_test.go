package formula

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsq/internal/ir"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Formula
	}{
		{"atom", `b("1")`, Pred("b", "1")},
		{"number argument", `b(1)`, Pred("b", "1")},
		{"negative number", `x(-3)`, Pred("x", "-3")},
		{"bare name", `ready`, Pred("ready")},
		{"empty args", `ready()`, Pred("ready")},
		{"null slot", `edge(null, "x")`, Atom("edge", ir.Absent(), ir.Val("x"), ir.Absent())},
		{"underscore slot", `edge(_, "x", _)`, Atom("edge", ir.Absent(), ir.Val("x"), ir.Absent())},
		{"quoted name", `"has space"("1")`, Pred("has space", "1")},
		{"escaped quote", `q("a\"b")`, Pred("q", `a"b`)},
		{"not", `!b("1")`, Negate(Pred("b", "1"))},
		{"double not", `!!b("1")`, Negate(Negate(Pred("b", "1")))},
		{"and", `a && b && c`, Conj(Pred("a"), Pred("b"), Pred("c"))},
		{"or", `a || b`, Disj(Pred("a"), Pred("b"))},
		{"precedence", `a || b && c`, Disj(Pred("a"), Conj(Pred("b"), Pred("c")))},
		{"parens", `(a || b) && c`, Conj(Disj(Pred("a"), Pred("b")), Pred("c"))},
		{"flattened", `(a && b) && c`, Conj(Pred("a"), Pred("b"), Pred("c"))},
		{"true", `true`, True()},
		{"false", `false`, False()},
		{"true operand dropped", `a && true`, Pred("a")},
		{"whitespace", "  a\t&&\n!b ", Conj(Pred("a"), Negate(Pred("b")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"empty", ``, 0},
		{"dangling and", `a &&`, 4},
		{"single ampersand", `a & b`, 2},
		{"unclosed paren", `(a`, 2},
		{"too many args", `p(1, 2, 3, 4)`, 11},
		{"bad arg", `p(x)`, 2},
		{"null as name", `null`, 0},
		{"trailing junk", `a b`, 2},
		{"unterminated string", `p("abc`, 2},
		{"missing comma", `p("a" "b")`, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.offset, pe.Offset)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	formulas := []Formula{
		Pred("b", "1"),
		Atom("edge", ir.Absent(), ir.Val("x"), ir.Val("")),
		Pred("weird name", `'; DROP TABLE predicate; --`),
		Negate(Conj(Pred("a"), Disj(Pred("b"), Negate(Pred("c", "1"))))),
		Disj(Conj(Pred("a"), Pred("b")), Conj(Pred("c"), True())),
		Implies(Pred("b", "0"), Negate(Pred("b", "1"))),
		Negate(False()),
	}

	for _, f := range formulas {
		t.Run(String(f), func(t *testing.T) {
			got, err := Parse(String(f))
			require.NoError(t, err)
			if diff := cmp.Diff(Normalize(f), got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse(`(`) })
	assert.NotPanics(t, func() { MustParse(`a`) })
}
