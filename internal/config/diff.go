// SPDX-License-Identifier: MIT

package config

import (
	"reflect"
)

// ChangeSummary describes the result of comparing two AnalysisConfigs.
type ChangeSummary struct {
	ChangedFields   []string // List of field paths that changed
	RestartRequired bool     // True if any changed field is NOT hot-reloadable
}

// hotReloadAllowlist defines the strictly permitted fields for runtime tuning.
var hotReloadAllowlist = map[string]struct{}{
	"LogLevel": {},
}

// Diff compares two configurations and returns a summary of changes.
func Diff(old, next AnalysisConfig) ChangeSummary {
	summary := ChangeSummary{}
	summary.compareStruct("", reflect.ValueOf(old), reflect.ValueOf(next))
	return summary
}

func (s *ChangeSummary) compareStruct(prefix string, oldVal, nextVal reflect.Value) {
	t := oldVal.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		fieldPath := f.Name
		if prefix != "" {
			fieldPath = prefix + "." + f.Name
		}

		ov := oldVal.Field(i)
		nv := nextVal.Field(i)

		if ov.Kind() == reflect.Struct {
			s.compareStruct(fieldPath, ov, nv)
			continue
		}

		// Leaf field comparison with normalization. Slice order is
		// significant (features are an ordered list), so no sorting.
		if !reflect.DeepEqual(normalizeValue(ov), normalizeValue(nv)) {
			s.recordChange(fieldPath)
		}
	}
}

func (s *ChangeSummary) recordChange(fieldPath string) {
	s.ChangedFields = append(s.ChangedFields, fieldPath)
	if _, allowed := hotReloadAllowlist[fieldPath]; !allowed {
		s.RestartRequired = true
	}
}

// normalizeValue canonicalizes nil and empty slices/maps so that semantic
// equality ignores the difference.
func normalizeValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
	case reflect.Map:
		if v.Len() == 0 {
			return nil
		}
	}
	return v.Interface()
}
