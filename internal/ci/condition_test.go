// SPDX-License-Identifier: MIT

package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalCondition(t *testing.T, input string, ctx Context) bool {
	t.Helper()
	expr, err := ParseCondition(input)
	require.NoError(t, err, "parse %q", input)
	ok, err := expr.Eval(ctx)
	require.NoError(t, err, "eval %q", input)
	return ok
}

func TestCondition_Comparisons(t *testing.T) {
	ctx := Context{
		Branch: "master",
		Tag:    "v0.5.0",
		Env:    map[string]string{"EXTRAS": "all"},
	}

	cases := []struct {
		input string
		want  bool
	}{
		{"$EXTRAS = all", true},
		{"$EXTRAS == all", true},
		{"$EXTRAS = none", false},
		{"$EXTRAS != none", true},
		{"branch = master", true},
		{"branch != master", false},
		{`tag =~ '^v[0-9]'`, true},
		{`tag =~ '^release-'`, false},
		{"'quoted value' = \"quoted value\"", true},
		{"env(EXTRAS) = all", true},
		{"env(EXTRAS) != all", false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, evalCondition(t, tc.input, ctx))
		})
	}
}

func TestCondition_Presence(t *testing.T) {
	ctx := Context{Branch: "master", Env: map[string]string{"EXTRAS": "all"}}

	assert.True(t, evalCondition(t, "$EXTRAS IS present", ctx))
	assert.False(t, evalCondition(t, "$EXTRAS IS blank", ctx))
	assert.True(t, evalCondition(t, "$UNSET IS blank", ctx))
	assert.True(t, evalCondition(t, "$UNSET IS NOT present", ctx))
	assert.True(t, evalCondition(t, "tag IS blank", ctx))
}

func TestCondition_BooleanOperators(t *testing.T) {
	ctx := Context{
		Branch: "master",
		Tag:    "v0.5.0",
		Env:    map[string]string{"EXTRAS": "all"},
	}

	cases := []struct {
		input string
		want  bool
	}{
		{"branch = master AND $EXTRAS = all", true},
		{"branch = develop AND $EXTRAS = all", false},
		{"branch = develop OR $EXTRAS = all", true},
		{"NOT branch = develop", true},
		{"NOT (branch = master AND tag IS present)", false},
		// AND binds tighter than OR
		{"branch = develop OR branch = master AND tag IS present", true},
		// keywords are case-insensitive
		{"branch = master and $EXTRAS = all", true},
		{"not branch = develop", true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, evalCondition(t, tc.input, ctx))
		})
	}
}

func TestParseCondition_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"dangling operator", "$EXTRAS ="},
		{"missing comparison", "$EXTRAS"},
		{"unbalanced paren", "($EXTRAS = all"},
		{"trailing tokens", "$EXTRAS = all extra"},
		{"bad pattern", "tag =~ ("},
		{"unterminated string", "$EXTRAS = 'all"},
		{"empty variable", "$ = all"},
		{"unknown predicate", "$EXTRAS IS empty"},
		{"stray bang", "$EXTRAS ! all"},
		{"unclosed env ref", "env(EXTRAS = all"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCondition(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestCondition_String(t *testing.T) {
	expr, err := ParseCondition("NOT ($EXTRAS = none OR branch != master)")
	require.NoError(t, err)
	assert.Equal(t, "(NOT ($EXTRAS = none OR branch != master))", expr.String())
}
