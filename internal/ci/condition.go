// SPDX-License-Identifier: MIT

package ci

import (
	"fmt"
	"regexp"
	"strings"
)

// The deploy condition language is a small boolean expression grammar over
// build metadata, e.g.
//
//	$EXTRAS = all
//	branch = master AND tag IS present
//	NOT ($EXTRAS = none OR branch != master)
//
// Terms are $VAR or env(VAR) environment references, the built-ins branch and tag,
// quoted strings or bare words. Comparisons are =, !=, =~ (regular
// expression match) and IS [NOT] present/blank. Keywords are
// case-insensitive. Conditions are parsed to an AST and evaluated against a
// Context; they are never handed to a shell.

// Expr is a parsed condition.
type Expr interface {
	Eval(ctx Context) (bool, error)
	String() string
}

// ParseCondition parses a deploy condition expression.
func ParseCondition(input string) (Expr, error) {
	toks, err := lexCondition(input)
	if err != nil {
		return nil, err
	}
	p := &condParser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q after condition", p.peek().text)
	}
	return expr, nil
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord          // bare word
	tokString
	tokEnv // $VAR
	tokEq
	tokNe
	tokMatch // =~
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokIs
)

type token struct {
	kind tokenKind
	text string
}

func lexCondition(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '=':
			if i+1 < len(input) && input[i+1] == '~' {
				toks = append(toks, token{tokMatch, "=~"})
				i += 2
			} else if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, token{tokEq, "=="})
				i += 2
			} else {
				toks = append(toks, token{tokEq, "="})
				i++
			}
		case c == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, fmt.Errorf("unexpected %q at offset %d", string(c), i)
			}
			toks = append(toks, token{tokNe, "!="})
			i += 2
		case c == '$':
			start := i + 1
			j := start
			for j < len(input) && isWordByte(input[j]) {
				j++
			}
			if j == start {
				return nil, fmt.Errorf("empty variable reference at offset %d", i)
			}
			toks = append(toks, token{tokEnv, input[start:j]})
			i = j
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(input) && input[j] != c {
				j++
			}
			if j >= len(input) {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{tokString, input[i+1 : j]})
			i = j + 1
		case isWordByte(c):
			j := i
			for j < len(input) && isWordByte(input[j]) {
				j++
			}
			word := input[i:j]
			switch strings.ToUpper(word) {
			case "AND":
				toks = append(toks, token{tokAnd, word})
			case "OR":
				toks = append(toks, token{tokOr, word})
			case "NOT":
				toks = append(toks, token{tokNot, word})
			case "IS":
				toks = append(toks, token{tokIs, word})
			default:
				toks = append(toks, token{tokWord, word})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", string(c), i)
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' || c == ',' || c == '/' || c == '*' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// --- parser ---

type condParser struct {
	toks []token
	pos  int
}

func (p *condParser) peek() token { return p.toks[p.pos] }

func (p *condParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *condParser) parseOr() (Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = binaryExpr{op: "OR", lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *condParser) parseAnd() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = binaryExpr{op: "AND", lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *condParser) parseUnary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{expr: inner}, nil
	}
	return p.parsePrimary()
}

func (p *condParser) parsePrimary() (Expr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("expected ')' near %q", p.peek().text)
		}
		p.next()
		return inner, nil
	}

	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	switch t := p.peek(); t.kind {
	case tokEq, tokNe, tokMatch:
		p.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if t.kind == tokMatch {
			if _, err := regexp.Compile(rhs.text); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %v", rhs.text, err)
			}
		}
		return cmpExpr{lhs: lhs, rhs: rhs, op: t.kind}, nil

	case tokIs:
		p.next()
		negated := false
		if p.peek().kind == tokNot {
			p.next()
			negated = true
		}
		word := p.next()
		if word.kind != tokWord {
			return nil, fmt.Errorf("expected predicate after IS, got %q", word.text)
		}
		switch strings.ToLower(word.text) {
		case "present":
			return presenceExpr{t: lhs, present: !negated}, nil
		case "blank":
			return presenceExpr{t: lhs, present: negated}, nil
		default:
			return nil, fmt.Errorf("unknown predicate %q (expected present or blank)", word.text)
		}

	default:
		return nil, fmt.Errorf("expected comparison after %q", lhs.String())
	}
}

type termKind int

const (
	termLiteral termKind = iota
	termEnv
	termBranch
	termTag
)

type term struct {
	kind termKind
	text string
}

func (p *condParser) parseTerm() (term, error) {
	switch t := p.next(); t.kind {
	case tokEnv:
		return term{kind: termEnv, text: t.text}, nil
	case tokString:
		return term{kind: termLiteral, text: t.text}, nil
	case tokWord:
		switch t.text {
		case "branch":
			return term{kind: termBranch, text: t.text}, nil
		case "tag":
			return term{kind: termTag, text: t.text}, nil
		case "env":
			// env(VAR) is the function form of $VAR
			if p.peek().kind == tokLParen {
				p.next()
				name := p.next()
				if name.kind != tokWord {
					return term{}, fmt.Errorf("expected variable name in env(), got %q", name.text)
				}
				if p.next().kind != tokRParen {
					return term{}, fmt.Errorf("expected ')' after env(%s", name.text)
				}
				return term{kind: termEnv, text: name.text}, nil
			}
		}
		return term{kind: termLiteral, text: t.text}, nil
	default:
		return term{}, fmt.Errorf("expected a value, got %q", t.text)
	}
}

func (t term) resolve(ctx Context) string {
	switch t.kind {
	case termEnv:
		return ctx.Env[t.text]
	case termBranch:
		return ctx.Branch
	case termTag:
		return ctx.Tag
	default:
		return t.text
	}
}

func (t term) String() string {
	if t.kind == termEnv {
		return "$" + t.text
	}
	return t.text
}

// --- AST ---

type binaryExpr struct {
	op       string
	lhs, rhs Expr
}

func (e binaryExpr) Eval(ctx Context) (bool, error) {
	left, err := e.lhs.Eval(ctx)
	if err != nil {
		return false, err
	}
	// No short-circuit: both sides are validated so evaluation errors surface.
	right, err := e.rhs.Eval(ctx)
	if err != nil {
		return false, err
	}
	if e.op == "AND" {
		return left && right, nil
	}
	return left || right, nil
}

func (e binaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.lhs, e.op, e.rhs)
}

type notExpr struct {
	expr Expr
}

func (e notExpr) Eval(ctx Context) (bool, error) {
	inner, err := e.expr.Eval(ctx)
	if err != nil {
		return false, err
	}
	return !inner, nil
}

func (e notExpr) String() string {
	return fmt.Sprintf("(NOT %s)", e.expr)
}

type cmpExpr struct {
	lhs, rhs term
	op       tokenKind
}

func (e cmpExpr) Eval(ctx Context) (bool, error) {
	left := e.lhs.resolve(ctx)
	switch e.op {
	case tokEq:
		return left == e.rhs.resolve(ctx), nil
	case tokNe:
		return left != e.rhs.resolve(ctx), nil
	case tokMatch:
		re, err := regexp.Compile(e.rhs.text)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %v", e.rhs.text, err)
		}
		return re.MatchString(left), nil
	default:
		return false, fmt.Errorf("unknown comparison operator")
	}
}

func (e cmpExpr) String() string {
	op := map[tokenKind]string{tokEq: "=", tokNe: "!=", tokMatch: "=~"}[e.op]
	return fmt.Sprintf("%s %s %s", e.lhs, op, e.rhs)
}

type presenceExpr struct {
	t       term
	present bool
}

func (e presenceExpr) Eval(ctx Context) (bool, error) {
	got := e.t.resolve(ctx) != ""
	return got == e.present, nil
}

func (e presenceExpr) String() string {
	if e.present {
		return fmt.Sprintf("%s IS present", e.t)
	}
	return fmt.Sprintf("%s IS blank", e.t)
}
