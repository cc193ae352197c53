package decl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"snex/internal/ident"
)

// TypeExpr is a parsed type expression such as "const dsp::Pair<float>&"
// or "span<float,N>".
type TypeExpr struct {
	Name ident.ID
	// HasArgs distinguishes "tuple<>" from "tuple".
	HasArgs bool
	Args    []TypeArg
	Const   bool
	Ref     bool
}

// TypeArg is one template argument: a nested type or an integer literal.
// A bare name is parsed as a type and decided at resolution time.
type TypeArg struct {
	Type  *TypeExpr
	Int   int
	IsInt bool
}

func (e *TypeExpr) String() string {
	var b strings.Builder
	if e.Const {
		b.WriteString("const ")
	}
	b.WriteString(e.Name.String())
	if e.HasArgs {
		b.WriteByte('<')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			if a.IsInt {
				b.WriteString(strconv.Itoa(a.Int))
			} else {
				b.WriteString(a.Type.String())
			}
		}
		b.WriteByte('>')
	}
	if e.Ref {
		b.WriteByte('&')
	}
	return b.String()
}

// IsBareName reports whether e is an unadorned name, which as a template
// argument may denote a constant.
func (e *TypeExpr) IsBareName() bool {
	return !e.HasArgs && !e.Const && !e.Ref
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokLess
	tokGreater
	tokComma
	tokAmp
	tokScope
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokLess:
		return "'<'"
	case tokGreater:
		return "'>'"
	case tokComma:
		return "','"
	case tokAmp:
		return "'&'"
	case tokScope:
		return "'::'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

type typeParser struct {
	src string
	pos int
	tok token
}

// ParseType parses a type expression.
func ParseType(src string) (*TypeExpr, error) {
	p := &typeParser{src: src}
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after type", p.tok.kind)
	}
	return e, nil
}

func (p *typeParser) errorf(format string, args ...any) *Error {
	return &Error{Kind: ErrTypeExpr, Input: p.src, Pos: p.tok.pos, Detail: fmt.Sprintf(format, args...)}
}

func (p *typeParser) next() error {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return nil
	}
	c := p.src[p.pos]
	switch {
	case c == '<':
		p.pos++
		p.tok = token{kind: tokLess, pos: start}
	case c == '>':
		p.pos++
		p.tok = token{kind: tokGreater, pos: start}
	case c == ',':
		p.pos++
		p.tok = token{kind: tokComma, pos: start}
	case c == '&':
		p.pos++
		p.tok = token{kind: tokAmp, pos: start}
	case c == ':':
		if !strings.HasPrefix(p.src[p.pos:], "::") {
			p.tok = token{pos: start}
			return p.errorf("single ':'")
		}
		p.pos += 2
		p.tok = token{kind: tokScope, pos: start}
	case c == '-' || (c >= '0' && c <= '9'):
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		p.tok = token{kind: tokInt, text: p.src[start:p.pos], pos: start}
	default:
		for p.pos < len(p.src) {
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			if r != '_' && !unicode.IsLetter(r) && !(p.pos > start && unicode.IsDigit(r)) {
				break
			}
			p.pos += size
		}
		if p.pos == start {
			p.tok = token{pos: start}
			return p.errorf("unexpected character %s", strconv.QuoteRune(rune(c)))
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	}
	return nil
}

func (p *typeParser) parseType() (*TypeExpr, error) {
	e := &TypeExpr{}
	if p.tok.kind == tokIdent && p.tok.text == "const" {
		e.Const = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	e.Name = name
	if p.tok.kind == tokLess {
		e.HasArgs = true
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokGreater {
			for {
				arg, err := p.parseArg()
				if err != nil {
					return nil, err
				}
				e.Args = append(e.Args, arg)
				if p.tok.kind != tokComma {
					break
				}
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if p.tok.kind != tokGreater {
			return nil, p.errorf("expected '>', found %s", p.tok.kind)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind == tokAmp {
		e.Ref = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (p *typeParser) parseName() (ident.ID, error) {
	var segs []string
	for {
		if p.tok.kind != tokIdent {
			return ident.Null, p.errorf("expected identifier, found %s", p.tok.kind)
		}
		segs = append(segs, p.tok.text)
		if err := p.next(); err != nil {
			return ident.Null, err
		}
		if p.tok.kind != tokScope {
			return ident.New(segs...), nil
		}
		if err := p.next(); err != nil {
			return ident.Null, err
		}
	}
}

func (p *typeParser) parseArg() (TypeArg, error) {
	if p.tok.kind == tokInt {
		n, err := strconv.Atoi(p.tok.text)
		if err != nil {
			return TypeArg{}, p.errorf("bad integer %s", p.tok.text)
		}
		if err := p.next(); err != nil {
			return TypeArg{}, err
		}
		return TypeArg{Int: n, IsInt: true}, nil
	}
	t, err := p.parseType()
	if err != nil {
		return TypeArg{}, err
	}
	return TypeArg{Type: t}, nil
}
