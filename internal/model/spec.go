// SPDX-License-Identifier: MIT

// Package model defines structured specifications for the statistical models
// an analysis configuration names. Historically these were free-text Python
// constructor expressions evaluated by the host; here they are a closed model
// type plus a typed parameter record. The legacy constructor form is still
// accepted on input but is parsed, never evaluated.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type identifies a supported model family.
type Type string

const (
	RandomForestRegressor      Type = "random_forest_regressor"
	RandomForestClassifier     Type = "random_forest_classifier"
	ExtraTreesRegressor        Type = "extra_trees_regressor"
	ExtraTreesClassifier       Type = "extra_trees_classifier"
	GradientBoostingRegressor  Type = "gradient_boosting_regressor"
	GradientBoostingClassifier Type = "gradient_boosting_classifier"
)

// constructorNames maps the class names used in legacy constructor
// expressions to their model type.
var constructorNames = map[string]Type{
	"RandomForestRegressor":      RandomForestRegressor,
	"RandomForestClassifier":     RandomForestClassifier,
	"ExtraTreesRegressor":        ExtraTreesRegressor,
	"ExtraTreesClassifier":       ExtraTreesClassifier,
	"GradientBoostingRegressor":  GradientBoostingRegressor,
	"GradientBoostingClassifier": GradientBoostingClassifier,
}

// className is the inverse of constructorNames.
var className = func() map[Type]string {
	m := make(map[Type]string, len(constructorNames))
	for name, t := range constructorNames {
		m[t] = name
	}
	return m
}()

// Types returns all supported model types in stable order.
func Types() []Type {
	out := make([]Type, 0, len(className))
	for t := range className {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsValid reports whether t names a supported model family.
func (t Type) IsValid() bool {
	_, ok := className[t]
	return ok
}

// IsClassifier reports whether t is a classification model.
func (t Type) IsClassifier() bool {
	return strings.HasSuffix(string(t), "_classifier")
}

// IsRegressor reports whether t is a regression model.
func (t Type) IsRegressor() bool {
	return strings.HasSuffix(string(t), "_regressor")
}

// Params holds hyperparameters as typed scalars.
// Permitted value types: int64, float64, string, bool and nil.
type Params map[string]any

// Spec is a structured model specification.
type Spec struct {
	Type   Type   `yaml:"type"`
	Params Params `yaml:"parameters,omitempty"`
}

// Validate checks the spec for a known type and legal parameter values.
func (s Spec) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("unknown model type %q", s.Type)
	}
	for name, val := range s.Params {
		switch val.(type) {
		case int64, float64, string, bool, nil:
		default:
			return fmt.Errorf("parameter %s: unsupported value type %T", name, val)
		}
	}
	return nil
}

// String renders the spec in constructor form with sorted parameters,
// e.g. RandomForestRegressor(n_estimators=200, n_jobs=-1).
func (s Spec) String() string {
	name, ok := className[s.Type]
	if !ok {
		name = string(s.Type)
	}

	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatLiteral(s.Params[k]))
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return "'" + val + "'"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// specYAML is the structured YAML transport form.
type specYAML struct {
	Type       string         `yaml:"type"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// UnmarshalYAML accepts either the structured mapping form or the legacy
// constructor string.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		parsed, err := ParseConstructor(raw)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = parsed
		return nil

	case yaml.MappingNode:
		// node.Decode spins up a fresh decoder without KnownFields, so the
		// mapping is walked by hand to keep unknown keys fatal.
		var spec Spec
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			switch keyNode.Value {
			case "type":
				var raw string
				if err := valNode.Decode(&raw); err != nil {
					return fmt.Errorf("line %d: model type: %w", valNode.Line, err)
				}
				spec.Type = Type(raw)
			case "parameters":
				var raw map[string]any
				if err := valNode.Decode(&raw); err != nil {
					return fmt.Errorf("line %d: model parameters: %w", valNode.Line, err)
				}
				if len(raw) > 0 {
					spec.Params = make(Params, len(raw))
					for name, val := range raw {
						normalized, err := normalizeParam(val)
						if err != nil {
							return fmt.Errorf("line %d: parameter %s: %w", valNode.Line, name, err)
						}
						spec.Params[name] = normalized
					}
				}
			default:
				return fmt.Errorf("line %d: field %s not found in model spec", keyNode.Line, keyNode.Value)
			}
		}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = spec
		return nil

	default:
		return fmt.Errorf("line %d: model spec must be a mapping or a constructor string", node.Line)
	}
}

// MarshalYAML always emits the structured form.
func (s Spec) MarshalYAML() (any, error) {
	out := specYAML{Type: string(s.Type)}
	if len(s.Params) > 0 {
		out.Parameters = map[string]any(s.Params)
	}
	return out, nil
}

// normalizeParam coerces YAML scalar types into the canonical Params types.
func normalizeParam(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64, int64:
		return val, nil
	case int:
		return int64(val), nil
	case uint64:
		return int64(val), nil // #nosec G115 -- hyperparameters are small
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
