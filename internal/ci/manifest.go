// SPDX-License-Identifier: MIT

// Package ci models the continuous-integration manifest shipped next to the
// analysis configuration: a language/version build matrix, install and test
// command sequences, and a deployment stanza with an encrypted credential
// and a publish condition.
package ci

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aict-tools/aictconf/internal/validate"
)

var (
	// ErrUnknownManifestField classifies strict YAML parse failures caused by
	// unknown keys. Use errors.Is instead of string matching.
	ErrUnknownManifestField = errors.New("unknown manifest field")
)

// Manifest is the parsed CI manifest.
type Manifest struct {
	Language string   `yaml:"language"`
	Env      []string `yaml:"env,omitempty"` // global NAME=value assignments
	Matrix   Matrix   `yaml:"matrix"`
	Install  []string `yaml:"install"`
	Script   []string `yaml:"script"`
	Deploy   *Deploy  `yaml:"deploy,omitempty"`
}

// Matrix is the build matrix.
type Matrix struct {
	Include []MatrixEntry `yaml:"include"`
}

// MatrixEntry is one language-version/environment pair.
type MatrixEntry struct {
	Python string `yaml:"python"`
	Env    string `yaml:"env,omitempty"` // space-separated NAME=value assignments
}

// Secret carries an encrypted credential blob. The plaintext never appears
// in the manifest; only the CI service can decrypt it.
type Secret struct {
	Secure string `yaml:"secure"`
}

// Deploy describes the package publishing stanza.
type Deploy struct {
	Provider      string   `yaml:"provider"`
	User          string   `yaml:"user"`
	Password      Secret   `yaml:"password"`
	Distributions string   `yaml:"distributions,omitempty"`
	SkipCleanup   bool     `yaml:"skip_cleanup,omitempty"`
	On            DeployOn `yaml:"on"`
}

// DeployOn pins the conditions under which a deploy fires.
type DeployOn struct {
	Branch    string `yaml:"branch,omitempty"`
	Tags      bool   `yaml:"tags,omitempty"`
	Python    string `yaml:"python,omitempty"`
	Condition string `yaml:"condition,omitempty"`
}

// Job is a concrete expanded build job.
type Job struct {
	Language string            `json:"language"`
	Version  string            `json:"version"`
	Env      map[string]string `json:"env"`
}

// Load reads and strictly parses a CI manifest. Unknown keys are rejected.
func Load(path string) (*Manifest, error) {
	path = filepath.Clean(path)

	// #nosec G304 -- manifest paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse strictly parses CI manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return &Manifest{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownManifestField, err)
		}
		return nil, fmt.Errorf("strict manifest parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("manifest contains multiple documents or trailing content")
	}

	return &m, nil
}

var versionPattern = regexp.MustCompile(`^\d+(\.\d+)*(-dev)?$`)

// knownExtras are the optional dependency groups the install step can consume.
var knownExtras = map[string]struct{}{
	"cta":  {},
	"fact": {},
}

// Validate checks the manifest against the schema-level properties the build
// service relies on.
func (m *Manifest) Validate() error {
	v := validate.New()

	v.OneOf("Language", m.Language, []string{"python", "generic"})

	for _, assignment := range m.Env {
		if _, err := parseAssignments(assignment); err != nil {
			v.AddError("Env", err.Error(), assignment)
		}
	}

	if len(m.Matrix.Include) == 0 {
		v.AddError("Matrix.Include", "build matrix must not be empty", nil)
	}
	for i, entry := range m.Matrix.Include {
		field := fmt.Sprintf("Matrix.Include[%d]", i)
		if !versionPattern.MatchString(entry.Python) {
			v.AddError(field+".Python", "must be a dotted version string", entry.Python)
		}
		env, err := parseAssignments(entry.Env)
		if err != nil {
			v.AddError(field+".Env", err.Error(), entry.Env)
		} else if extras, ok := env["EXTRAS"]; ok {
			if err := validateExtras(extras); err != nil {
				v.AddError(field+".Env", err.Error(), extras)
			}
		}
	}

	if len(m.Install) == 0 {
		v.AddError("Install", "install phase must not be empty", nil)
	}
	if len(m.Script) == 0 {
		v.AddError("Script", "script phase must not be empty", nil)
	}

	if m.Deploy != nil {
		m.Deploy.validate(v)
	}

	return v.Err()
}

func (d *Deploy) validate(v *validate.Validator) {
	v.OneOf("Deploy.Provider", d.Provider, []string{"pypi", "script"})
	v.NotEmpty("Deploy.User", d.User)

	v.NotEmpty("Deploy.Password.Secure", d.Password.Secure)
	if d.Password.Secure != "" {
		if _, err := base64.StdEncoding.DecodeString(d.Password.Secure); err != nil {
			v.AddError("Deploy.Password.Secure", "encrypted credential must be base64", "(redacted)")
		}
	}

	if d.On.Python != "" && !versionPattern.MatchString(d.On.Python) {
		v.AddError("Deploy.On.Python", "must be a dotted version string", d.On.Python)
	}
	if d.On.Condition != "" {
		v.Custom("Deploy.On.Condition", d.On.Condition, func(val interface{}) error {
			_, err := ParseCondition(val.(string))
			return err
		})
	}
}

// validateExtras checks an EXTRAS value: "all", "none", or a comma-joined
// subset of the known extras.
func validateExtras(extras string) error {
	switch extras {
	case "all", "none":
		return nil
	}
	for _, part := range strings.Split(extras, ",") {
		if _, ok := knownExtras[part]; !ok {
			return fmt.Errorf("unknown EXTRAS value %q", part)
		}
	}
	return nil
}

// parseAssignments parses space-separated NAME=value assignments.
func parseAssignments(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, field := range strings.Fields(raw) {
		name, value, ok := strings.Cut(field, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed environment assignment %q", field)
		}
		out[name] = value
	}
	return out, nil
}

// Jobs expands the build matrix into concrete jobs. Matrix env assignments
// override global ones.
func (m *Manifest) Jobs() ([]Job, error) {
	global := map[string]string{}
	for _, assignment := range m.Env {
		parsed, err := parseAssignments(assignment)
		if err != nil {
			return nil, fmt.Errorf("global env: %w", err)
		}
		for k, val := range parsed {
			global[k] = val
		}
	}

	jobs := make([]Job, 0, len(m.Matrix.Include))
	for i, entry := range m.Matrix.Include {
		env := make(map[string]string, len(global))
		for k, val := range global {
			env[k] = val
		}
		local, err := parseAssignments(entry.Env)
		if err != nil {
			return nil, fmt.Errorf("matrix entry %d: %w", i, err)
		}
		for k, val := range local {
			env[k] = val
		}
		jobs = append(jobs, Job{Language: m.Language, Version: entry.Python, Env: env})
	}
	return jobs, nil
}

// Context describes the build being evaluated for deployment.
type Context struct {
	Branch string
	Tag    string // empty when the build is not a tag build
	Python string // language version of the job, "" to skip the pin
	Env    map[string]string
}

// ShouldDeploy reports whether the deploy stanza fires for the given build:
// the branch pin, tag requirement, version pin and condition must all hold.
func (d *Deploy) ShouldDeploy(ctx Context) (bool, error) {
	if d.On.Branch != "" && ctx.Branch != d.On.Branch {
		return false, nil
	}
	if d.On.Tags && ctx.Tag == "" {
		return false, nil
	}
	if d.On.Python != "" && ctx.Python != "" && ctx.Python != d.On.Python {
		return false, nil
	}
	if d.On.Condition != "" {
		expr, err := ParseCondition(d.On.Condition)
		if err != nil {
			return false, fmt.Errorf("deploy condition: %w", err)
		}
		ok, err := expr.Eval(ctx)
		if err != nil {
			return false, fmt.Errorf("deploy condition: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
