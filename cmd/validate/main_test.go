// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runValidate(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_NoArgsIsUsageError(t *testing.T) {
	code, _, stderr := runValidate(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "at least one file is required")
}

func TestRun_ValidConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "seed: 42\n")

	code, stdout, _ := runValidate(t, path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, path+" is valid")
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "seed: -1\n")

	code, _, stderr := runValidate(t, path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Configuration error in "+path)
	assert.Contains(t, stderr, "Seed")
}

func TestRun_UnknownKey(t *testing.T) {
	path := writeFile(t, "config.yaml", "seed: 42\nbogus_key: 1\n")

	code, _, stderr := runValidate(t, path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "bogus_key")
}

func TestRun_MixedFiles(t *testing.T) {
	good := writeFile(t, "good.yaml", "seed: 42\n")
	bad := writeFile(t, "bad.yaml", "seed: -1\n")

	code, stdout, stderr := runValidate(t, good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, good+" is valid")
	assert.Contains(t, stderr, "Configuration error in "+bad)
}

func TestRun_CIManifest(t *testing.T) {
	valid := writeFile(t, "ci.yaml", `language: python
matrix:
  include:
    - python: "3.6"
install:
  - pip install .
script:
  - pytest
`)

	code, stdout, _ := runValidate(t, "-ci", valid)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, valid+" is valid")

	invalid := writeFile(t, "bad-ci.yaml", "language: ruby\n")
	code, _, stderr := runValidate(t, "-ci", invalid)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Language")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runValidate(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "dev")
}

func TestRun_BadFlag(t *testing.T) {
	code, _, _ := runValidate(t, "-bogus")
	assert.Equal(t, 2, code)
}
