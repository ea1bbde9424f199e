// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	assert.Equal(t, "fallback", ParseString("AICT_TEST_UNSET", "fallback"))

	t.Setenv("AICT_TEST_STRING", "value")
	assert.Equal(t, "value", ParseString("AICT_TEST_STRING", "fallback"))

	t.Setenv("AICT_TEST_EMPTY", "")
	assert.Equal(t, "fallback", ParseString("AICT_TEST_EMPTY", "fallback"))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("AICT_TEST_UNSET", 5))

	t.Setenv("AICT_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("AICT_TEST_INT", 5))

	t.Setenv("AICT_TEST_BAD_INT", "notanumber")
	assert.Equal(t, 5, ParseInt("AICT_TEST_BAD_INT", 5))
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("AICT_TEST_UNSET", true))

	for _, v := range []string{"true", "1", "yes", "TRUE", "Yes"} {
		t.Setenv("AICT_TEST_BOOL", v)
		assert.True(t, ParseBool("AICT_TEST_BOOL", false), v)
	}
	for _, v := range []string{"false", "0", "no", "FALSE"} {
		t.Setenv("AICT_TEST_BOOL", v)
		assert.False(t, ParseBool("AICT_TEST_BOOL", true), v)
	}

	t.Setenv("AICT_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("AICT_TEST_BOOL", true))
}
