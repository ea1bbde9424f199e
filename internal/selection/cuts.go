// SPDX-License-Identifier: MIT

// Package selection implements event selection cuts: ordered column
// comparisons applied before training or analysis. A cut names a column, a
// comparison operator and a threshold value.
package selection

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	xglog "github.com/aict-tools/aictconf/internal/log"
)

// Operator is a canonical comparison operator symbol.
type Operator string

const (
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "=="
	OpNE Operator = "!="
	OpGT Operator = ">"
	OpGE Operator = ">="
)

// operatorAliases maps both symbol and text forms to canonical operators.
var operatorAliases = map[string]Operator{
	"<": OpLT, "lt": OpLT,
	"<=": OpLE, "le": OpLE,
	"==": OpEQ, "eq": OpEQ,
	"=":  OpEQ,
	"!=": OpNE, "ne": OpNE,
	">": OpGT, "gt": OpGT,
	">=": OpGE, "ge": OpGE,
}

// ParseOperator resolves an operator symbol or text alias.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[s]
	if !ok {
		return "", fmt.Errorf("unknown selection operator %q", s)
	}
	return op, nil
}

// Cut is a single selection criterion.
type Cut struct {
	Column   string
	Operator Operator
	Value    any
}

// String renders the cut as it appears in a query, e.g. `length >= 10`.
func (c Cut) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, formatValue(c.Value))
}

// Cuts is an ordered list of selection criteria, combined conjunctively.
type Cuts []Cut

// UnmarshalYAML accepts the canonical list form
//
//	selection:
//	  - length: ['>=', 10]
//	  - num_islands: ['<=', 5]
//
// and the legacy plain-mapping form with the same entries. A list entry with
// more than one key is an error.
func (cs *Cuts) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make(Cuts, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
				return fmt.Errorf("line %d: expected a single-entry mapping column: [operator, value]", item.Line)
			}
			cut, err := decodeCut(item.Content[0], item.Content[1])
			if err != nil {
				return err
			}
			out = append(out, cut)
		}
		*cs = out
		return nil

	case yaml.MappingNode:
		// legacy support for a plain mapping of column -> [operator, value]
		out := make(Cuts, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			cut, err := decodeCut(node.Content[i], node.Content[i+1])
			if err != nil {
				return err
			}
			out = append(out, cut)
		}
		*cs = out
		return nil

	default:
		return fmt.Errorf("line %d: selection must be a list of cuts", node.Line)
	}
}

// MarshalYAML always emits the canonical list form.
func (cs Cuts) MarshalYAML() (any, error) {
	out := make([]map[string][2]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, map[string][2]any{
			c.Column: {string(c.Operator), c.Value},
		})
	}
	return out, nil
}

func decodeCut(keyNode, valNode *yaml.Node) (Cut, error) {
	var column string
	if err := keyNode.Decode(&column); err != nil {
		return Cut{}, fmt.Errorf("line %d: cut column: %w", keyNode.Line, err)
	}

	var pair []yaml.Node
	if err := valNode.Decode(&pair); err != nil || len(pair) != 2 {
		return Cut{}, fmt.Errorf("line %d: cut %s: expected [operator, value]", valNode.Line, column)
	}

	var opRaw string
	if err := pair[0].Decode(&opRaw); err != nil {
		return Cut{}, fmt.Errorf("line %d: cut %s: operator: %w", pair[0].Line, column, err)
	}
	op, err := ParseOperator(opRaw)
	if err != nil {
		return Cut{}, fmt.Errorf("line %d: cut %s: %w", pair[0].Line, column, err)
	}

	val, err := decodeScalar(&pair[1])
	if err != nil {
		return Cut{}, fmt.Errorf("line %d: cut %s: %w", pair[1].Line, column, err)
	}

	return Cut{Column: column, Operator: op, Value: val}, nil
}

func decodeScalar(node *yaml.Node) (any, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64, float64, string, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported cut value type %T", raw)
	}
}

// Query renders the conjunctive query string for the cuts, e.g.
// `(length >= 10) & (num_islands <= 5)`. String values are double-quoted.
func (cs Cuts) Query() string {
	if len(cs) == 0 {
		return ""
	}
	query := "("
	for i, c := range cs {
		if i > 0 {
			query += ") & ("
		}
		query += c.String()
	}
	return query + ")"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return `"` + val + `"`
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Row is a single event keyed by column name.
type Row map[string]any

// Match reports whether the row passes every cut. A column missing from the
// row is an error, matching the behaviour of selections on parameter tables.
func (cs Cuts) Match(row Row) (bool, error) {
	for _, c := range cs {
		val, ok := row[c.Column]
		if !ok {
			return false, fmt.Errorf("column %s is missing from the parameters table", c.Column)
		}
		pass, err := c.eval(val)
		if err != nil {
			return false, fmt.Errorf("cut %q: %w", c.String(), err)
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// Filter applies the cuts in order and returns the surviving rows, logging
// the number of events each cut removed.
func (cs Cuts) Filter(rows []Row) ([]Row, error) {
	logger := xglog.WithComponent("selection")

	remaining := rows
	for _, c := range cs {
		before := len(remaining)
		kept := remaining[:0:0]
		for _, row := range remaining {
			val, ok := row[c.Column]
			if !ok {
				return nil, fmt.Errorf("column %s is missing from the parameters table", c.Column)
			}
			pass, err := c.eval(val)
			if err != nil {
				return nil, fmt.Errorf("cut %q: %w", c.String(), err)
			}
			if pass {
				kept = append(kept, row)
			}
		}
		remaining = kept
		logger.Debug().
			Str(xglog.FieldCut, c.String()).
			Int("removed", before-len(remaining)).
			Msg("applied selection cut")
	}
	return remaining, nil
}

func (c Cut) eval(val any) (bool, error) {
	// Numeric comparison when both sides coerce to float.
	if a, aok := toFloat(val); aok {
		if b, bok := toFloat(c.Value); bok {
			return compareOrdered(a, b, c.Operator)
		}
	}

	switch want := c.Value.(type) {
	case string:
		got, ok := val.(string)
		if !ok {
			return false, fmt.Errorf("cannot compare %T against string", val)
		}
		return compareOrdered(got, want, c.Operator)
	case bool:
		got, ok := val.(bool)
		if !ok {
			return false, fmt.Errorf("cannot compare %T against bool", val)
		}
		switch c.Operator {
		case OpEQ:
			return got == want, nil
		case OpNE:
			return got != want, nil
		default:
			return false, fmt.Errorf("operator %s is not defined for booleans", c.Operator)
		}
	default:
		return false, fmt.Errorf("cannot compare %T against %T", val, c.Value)
	}
}

func compareOrdered[T float64 | string](a, b T, op Operator) (bool, error) {
	switch op {
	case OpLT:
		return a < b, nil
	case OpLE:
		return a <= b, nil
	case OpEQ:
		return a == b, nil
	case OpNE:
		return a != b, nil
	case OpGT:
		return a > b, nil
	case OpGE:
		return a >= b, nil
	default:
		return false, fmt.Errorf("unknown operator %s", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
