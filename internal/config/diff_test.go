// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff_NoChanges(t *testing.T) {
	summary := Diff(Default(), Default())
	assert.Empty(t, summary.ChangedFields)
	assert.False(t, summary.RestartRequired)
}

func TestDiff_LogLevelIsHotReloadable(t *testing.T) {
	old := Default()
	next := Default()
	next.LogLevel = "debug"

	summary := Diff(old, next)
	assert.Equal(t, []string{"LogLevel"}, summary.ChangedFields)
	assert.False(t, summary.RestartRequired)
}

func TestDiff_OtherFieldsRequireRestart(t *testing.T) {
	old := Default()
	next := Default()
	next.Seed = 7
	next.Disp.DeltaUnit = UnitRad

	summary := Diff(old, next)
	assert.Contains(t, summary.ChangedFields, "Seed")
	assert.Contains(t, summary.ChangedFields, "Disp.DeltaUnit")
	assert.True(t, summary.RestartRequired)
}

func TestDiff_NestedModelChange(t *testing.T) {
	old := Default()
	next := Default()
	next.Disp.DispRegressor.Params["n_estimators"] = int64(500)

	summary := Diff(old, next)
	assert.Contains(t, summary.ChangedFields, "Disp.DispRegressor.Params")
	assert.True(t, summary.RestartRequired)
}

func TestDiff_NilAndEmptyAreEqual(t *testing.T) {
	a := Default()
	b := Default()
	a.Disp.FeatureGeneration.NeededColumns = nil
	b.Disp.FeatureGeneration.NeededColumns = []string{}
	b.Disp.FeatureGeneration.Features = map[string]string{}

	summary := Diff(a, b)
	assert.Empty(t, summary.ChangedFields)
}

func TestDiff_FeatureOrderIsSignificant(t *testing.T) {
	old := Default()
	next := Default()
	next.Disp.Features = append([]string(nil), old.Disp.Features...)
	next.Disp.Features[0], next.Disp.Features[1] = next.Disp.Features[1], next.Disp.Features[0]

	summary := Diff(old, next)
	assert.Contains(t, summary.ChangedFields, "Disp.Features")
	assert.True(t, summary.RestartRequired)
}
