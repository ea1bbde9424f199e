// SPDX-License-Identifier: MIT

package ci

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FullManifest(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "ci.yaml"))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "python", m.Language)
	assert.Len(t, m.Matrix.Include, 3)
	assert.Equal(t, "3.5", m.Matrix.Include[0].Python)
	assert.Len(t, m.Install, 2)
	assert.Len(t, m.Script, 2)

	require.NotNil(t, m.Deploy)
	assert.Equal(t, "pypi", m.Deploy.Provider)
	assert.Equal(t, "aict-tools", m.Deploy.User)
	assert.Equal(t, "sdist bdist_wheel", m.Deploy.Distributions)
	assert.True(t, m.Deploy.SkipCleanup)
	assert.Equal(t, "master", m.Deploy.On.Branch)
	assert.True(t, m.Deploy.On.Tags)
	assert.Equal(t, "$EXTRAS = all", m.Deploy.On.Condition)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("language: python\nsudo: false\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownManifestField))
}

func TestParse_MultipleDocuments(t *testing.T) {
	_, err := Parse([]byte("language: python\n---\nlanguage: generic\n"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		want string
	}{
		{"unknown extras", "invalid-extras.yaml", "EXTRAS"},
		{"broken condition", "invalid-condition.yaml", "Deploy.On.Condition"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Load(filepath.Join("testdata", tc.file))
			require.NoError(t, err)

			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	m := &Manifest{Language: "ruby"}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Language")
	assert.Contains(t, err.Error(), "Matrix.Include")
	assert.Contains(t, err.Error(), "Install")
	assert.Contains(t, err.Error(), "Script")
}

func TestValidate_SecretMustBeBase64(t *testing.T) {
	m := &Manifest{
		Language: "python",
		Matrix:   Matrix{Include: []MatrixEntry{{Python: "3.6"}}},
		Install:  []string{"pip install ."},
		Script:   []string{"pytest"},
		Deploy: &Deploy{
			Provider: "pypi",
			User:     "aict-tools",
			Password: Secret{Secure: "not base64!!"},
		},
	}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64")
	// the blob itself must not leak into the error
	assert.NotContains(t, err.Error(), "not base64!!")
}

func TestJobs_MergesGlobalAndMatrixEnv(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "ci.yaml"))
	require.NoError(t, err)

	jobs, err := m.Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "3.5", jobs[0].Version)
	assert.Equal(t, "python", jobs[0].Language)
	assert.Equal(t, map[string]string{
		"PIP_DISABLE_PIP_VERSION_CHECK": "1",
		"EXTRAS":                        "all",
	}, jobs[0].Env)
	assert.Equal(t, "none", jobs[2].Env["EXTRAS"])
}

func TestShouldDeploy(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "ci.yaml"))
	require.NoError(t, err)

	deploy := m.Deploy
	base := Context{
		Branch: "master",
		Tag:    "v0.5.0",
		Python: "3.6",
		Env:    map[string]string{"EXTRAS": "all"},
	}

	ok, err := deploy.ShouldDeploy(base)
	require.NoError(t, err)
	assert.True(t, ok)

	cases := []struct {
		name   string
		mutate func(*Context)
	}{
		{"wrong branch", func(c *Context) { c.Branch = "develop" }},
		{"not a tag build", func(c *Context) { c.Tag = "" }},
		{"wrong python", func(c *Context) { c.Python = "3.5" }},
		{"condition false", func(c *Context) { c.Env = map[string]string{"EXTRAS": "none"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := base
			tc.mutate(&ctx)
			ok, err := deploy.ShouldDeploy(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
