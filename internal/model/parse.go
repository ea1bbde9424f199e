// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseConstructor parses a legacy constructor expression such as
//
//	ensemble.RandomForestRegressor(n_estimators=200, n_jobs=-1)
//
// into a Spec. The grammar is a single keyword-argument call over scalar
// literals (int, float, quoted string, True, False, None). A dotted module
// prefix before the class name is accepted and discarded. The expression is
// never evaluated.
func ParseConstructor(expr string) (Spec, error) {
	p := &parser{input: expr}

	name, err := p.dottedName()
	if err != nil {
		return Spec{}, err
	}

	class := name
	if idx := strings.LastIndexByte(name, '.'); idx != -1 {
		class = name[idx+1:]
	}
	modelType, ok := constructorNames[class]
	if !ok {
		return Spec{}, fmt.Errorf("unknown model class %q", class)
	}

	if err := p.expect('('); err != nil {
		return Spec{}, err
	}

	params := Params{}
	for {
		p.skipSpace()
		if p.peek() == ')' {
			p.pos++
			break
		}

		key, err := p.identifier()
		if err != nil {
			return Spec{}, err
		}
		if _, dup := params[key]; dup {
			return Spec{}, fmt.Errorf("duplicate parameter %q", key)
		}
		if err := p.expect('='); err != nil {
			return Spec{}, fmt.Errorf("parameter %s: %w", key, err)
		}
		val, err := p.literal()
		if err != nil {
			return Spec{}, fmt.Errorf("parameter %s: %w", key, err)
		}
		params[key] = val

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++ // trailing comma before ')' is fine
		case ')':
		default:
			return Spec{}, fmt.Errorf("expected ',' or ')' at offset %d", p.pos)
		}
	}

	p.skipSpace()
	if p.pos != len(p.input) {
		return Spec{}, fmt.Errorf("trailing content after constructor: %q", p.input[p.pos:])
	}

	spec := Spec{Type: modelType}
	if len(params) > 0 {
		spec.Params = params
	}
	return spec, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *parser) identifier() (string, error) {
	p.skipSpace()
	start := p.pos
	if !isIdentStart(p.peek()) {
		return "", fmt.Errorf("expected identifier at offset %d", p.pos)
	}
	for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

// dottedName reads an identifier optionally qualified by dots, e.g.
// "sklearn.ensemble.RandomForestRegressor".
func (p *parser) dottedName() (string, error) {
	name, err := p.identifier()
	if err != nil {
		return "", err
	}
	for p.peek() == '.' {
		p.pos++
		part, err := p.identifier()
		if err != nil {
			return "", err
		}
		name += "." + part
	}
	return name, nil
}

// literal reads a scalar literal: int, float, quoted string, True, False, None.
func (p *parser) literal() (any, error) {
	p.skipSpace()
	c := p.peek()

	switch {
	case c == '\'' || c == '"':
		return p.stringLiteral(c)
	case c == '-' || c == '+' || (c >= '0' && c <= '9') || c == '.':
		return p.numberLiteral()
	case isIdentStart(c):
		word, err := p.identifier()
		if err != nil {
			return nil, err
		}
		switch word {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected bare word %q (only True, False, None allowed)", word)
	default:
		return nil, fmt.Errorf("expected literal at offset %d", p.pos)
	}
}

func (p *parser) stringLiteral(quote byte) (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", fmt.Errorf("unterminated escape at offset %d", p.pos)
			}
			p.pos++
			b.WriteByte(p.input[p.pos])
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *parser) numberLiteral() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c >= '0' && c <= '9':
			p.pos++
		case c == '.':
			isFloat = true
			p.pos++
		case c == 'e' || c == 'E':
			isFloat = true
			p.pos++
			if n := p.peek(); n == '-' || n == '+' {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	raw := p.input[start:p.pos]
	if raw == "" || raw == "-" || raw == "+" {
		return nil, fmt.Errorf("expected number at offset %d", start)
	}
	if isFloat {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return i, nil
}
