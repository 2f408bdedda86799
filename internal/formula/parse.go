package formula

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/tsq/internal/ir"
)

// ParseError reports a syntax error in formula text.
type ParseError struct {
	Offset  int    // Byte offset into the input
	Message string // Human-readable description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula: offset %d: %s", e.Offset, e.Message)
}

// Parse reads a formula in the text form produced by String.
//
// Grammar:
//
//	expr    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" expr ")" | "true" | "false" | atom
//	atom    = name [ "(" [ arg { "," arg } ] ")" ]
//	name    = identifier | string
//	arg     = string | number | "null" | "_"
//
// Numbers are taken as their literal text: b(1) is b("1"). At most
// ir.Arity arguments are allowed; missing trailing arguments are absent.
// The result is normalized (see Normalize).
func Parse(text string) (Formula, error) {
	p := &parser{lex: lexer{src: text}}
	p.advance()
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after formula", p.tok)
	}
	return Normalize(f), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(text string) Formula {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (Formula, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	ops := []Formula{first}
	for p.tok.kind == tokOr {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		ops = append(ops, next)
	}
	if len(ops) == 1 {
		return first, nil
	}
	return Or{Operands: ops}, nil
}

func (p *parser) parseAnd() (Formula, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	ops := []Formula{first}
	for p.tok.kind == tokAnd {
		p.advance()
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		ops = append(ops, next)
	}
	if len(ops) == 1 {
		return first, nil
	}
	return And{Operands: ops}, nil
}

func (p *parser) parseUnary() (Formula, error) {
	if p.tok.kind == tokNot {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Formula, error) {
	switch p.tok.kind {
	case tokLParen:
		p.advance()
		f, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected ')', found %s", p.tok)
		}
		p.advance()
		return f, nil
	case tokIdent:
		switch p.tok.text {
		case "true":
			p.advance()
			return True(), nil
		case "false":
			p.advance()
			return False(), nil
		case "null", "_":
			return nil, p.errorf("%q is not a predicate name", p.tok.text)
		}
		return p.parseAtom()
	case tokString:
		return p.parseAtom()
	case tokEOF:
		return nil, p.errorf("unexpected end of formula")
	default:
		return nil, p.errorf("unexpected %s", p.tok)
	}
}

func (p *parser) parseAtom() (Formula, error) {
	atom := Atomic{Name: p.tok.text}
	p.advance()

	if p.tok.kind != tokLParen {
		return atom, nil
	}
	p.advance()

	if p.tok.kind == tokRParen {
		p.advance()
		return atom, nil
	}

	for i := 0; ; i++ {
		if i >= ir.Arity {
			return nil, p.errorf("predicate %q takes at most %d arguments", atom.Name, ir.Arity)
		}
		attr, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		atom.Attrs[i] = attr

		if p.tok.kind == tokRParen {
			p.advance()
			return atom, nil
		}
		if p.tok.kind != tokComma {
			return nil, p.errorf("expected ',' or ')', found %s", p.tok)
		}
		p.advance()
	}
}

func (p *parser) parseArg() (ir.Attr, error) {
	tok := p.tok
	switch {
	case tok.kind == tokString, tok.kind == tokNumber:
		p.advance()
		return ir.Val(tok.text), nil
	case tok.kind == tokIdent && (tok.text == "null" || tok.text == "_"):
		p.advance()
		return ir.Absent(), nil
	default:
		return ir.Attr{}, p.errorf("expected string, number or null argument, found %s", tok)
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokNot
	tokAnd
	tokOr
	tokInvalid
)

type token struct {
	kind tokenKind
	text string // decoded text for identifiers, strings and numbers
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of formula"
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	case tokNumber:
		return fmt.Sprintf("number %s", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case c == '!':
		l.pos++
		return token{kind: tokNot, text: "!", pos: start}
	case c == '&' || c == '|':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == c {
			l.pos += 2
			if c == '&' {
				return token{kind: tokAnd, text: "&&", pos: start}
			}
			return token{kind: tokOr, text: "||", pos: start}
		}
		l.pos++
		return token{kind: tokInvalid, text: string(c), pos: start}
	case c == '"':
		return l.scanString()
	case c == '-' || (c >= '0' && c <= '9'):
		return l.scanNumber()
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentRune(r, true) {
		for l.pos < len(l.src) {
			r, size = utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentRune(r, false) {
				break
			}
			l.pos += size
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
	}
	l.pos += size
	return token{kind: tokInvalid, text: string(r), pos: start}
}

// scanString reads a Go double-quoted string literal.
func (l *lexer) scanString() token {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			raw := l.src[start:l.pos]
			s, err := strconv.Unquote(raw)
			if err != nil {
				return token{kind: tokInvalid, text: raw, pos: start}
			}
			return token{kind: tokString, text: s, pos: start}
		}
		l.pos++
	}
	l.pos = len(l.src)
	return token{kind: tokInvalid, text: l.src[start:], pos: start}
}

// scanNumber reads an optionally signed decimal literal.
func (l *lexer) scanNumber() token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.src) && (l.src[l.pos] >= '0' && l.src[l.pos] <= '9' || l.src[l.pos] == '.') {
		l.pos++
		digits++
	}
	if digits == 0 {
		return token{kind: tokInvalid, text: l.src[start:l.pos], pos: start}
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}
}
