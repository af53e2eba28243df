// Package sexpr reads the s-expression form emitted by frisbee's
// (out-of-scope) front-end parser: the loader's only dependency on an
// external tool is deserializing this form into internal/ast structures
// (spec.md §4.6 step 1). The grammar is deliberately small: parenthesized
// lists, bare symbols, and double-quoted strings.
package sexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is either a Symbol/String/Int atom or a List of Nodes. Exactly one
// of the fields is meaningful per Kind.
type Kind int

const (
	KindSymbol Kind = iota
	KindString
	KindInt
	KindList
)

type Node struct {
	Kind Kind

	Symbol string
	String string
	Int    int64
	List   []Node
}

func (n Node) String_() string {
	switch n.Kind {
	case KindSymbol:
		return n.Symbol
	case KindString:
		return strconv.Quote(n.String)
	case KindInt:
		return strconv.FormatInt(n.Int, 10)
	default:
		parts := make([]string, len(n.List))
		for i, c := range n.List {
			parts[i] = c.String_()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
}

// Parse reads exactly one top-level form from src. It errors on trailing
// non-whitespace input, unterminated lists, or unterminated strings.
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	p.skipSpace()
	n, err := p.parseForm()
	if err != nil {
		return Node{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Node{}, fmt.Errorf("sexpr: trailing input at offset %d", p.pos)
	}
	return n, nil
}

// ParseAll reads every top-level form in src, e.g. a file containing one
// form per declaration.
func ParseAll(src string) ([]Node, error) {
	p := &parser{src: src}
	var forms []Node
	for {
		p.skipSpace()
		if p.pos == len(p.src) {
			return forms, nil
		}
		n, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if c == ';' { // line comment
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *parser) parseForm() (Node, error) {
	if p.pos >= len(p.src) {
		return Node{}, fmt.Errorf("sexpr: unexpected end of input")
	}

	switch c := p.src[p.pos]; {
	case c == '(':
		return p.parseList()
	case c == '"':
		return p.parseString()
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseList() (Node, error) {
	p.pos++ // consume '('
	var items []Node
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return Node{}, fmt.Errorf("sexpr: unterminated list")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return Node{Kind: KindList, List: items}, nil
		}
		item, err := p.parseForm()
		if err != nil {
			return Node{}, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseString() (Node, error) {
	start := p.pos
	p.pos++ // consume opening quote
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return Node{}, fmt.Errorf("sexpr: unterminated string starting at offset %d", start)
		}
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return Node{Kind: KindString, String: b.String()}, nil
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(p.src[p.pos])
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}

func isAtomBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"' || c == ';'
}

func (p *parser) parseAtom() (Node, error) {
	start := p.pos
	for p.pos < len(p.src) && !isAtomBoundary(p.src[p.pos]) {
		p.pos++
	}
	text := p.src[start:p.pos]
	if text == "" {
		return Node{}, fmt.Errorf("sexpr: unexpected character %q at offset %d", p.src[p.pos], p.pos)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Node{Kind: KindInt, Int: n}, nil
	}
	return Node{Kind: KindSymbol, Symbol: text}, nil
}
