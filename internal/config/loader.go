// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the loader.
const (
	EnvSeed               = "AICT_SEED"
	EnvNCrossValidations  = "AICT_N_CROSS_VALIDATIONS"
	EnvTelescopeEventsKey = "AICT_TELESCOPE_EVENTS_KEY"
	EnvArrayEventsKey     = "AICT_ARRAY_EVENTS_KEY"
	EnvRunsKey            = "AICT_RUNS_KEY"
	EnvMultipleTelescopes = "AICT_MULTIPLE_TELESCOPES"
	EnvLogLevel           = "AICT_LOG_LEVEL"
	EnvDispNSignal        = "AICT_DISP_N_SIGNAL"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Wrapper methods for mechanical connection tracking

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AnalysisConfig, error) {
	// 1. Set defaults
	cfg := Default()

	// 2. Load from file (if provided)
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	// 3. Override with environment variables (highest priority)
	l.mergeEnvConfig(&cfg)

	// 4. Version from binary
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	// Parse YAML with strict mode (unknown fields cause errors)
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// mergeFileConfig applies file values over the defaults. Pointer fields
// distinguish "absent" from explicit zero values.
func mergeFileConfig(cfg *AnalysisConfig, file *FileConfig) {
	if file.Seed != nil {
		cfg.Seed = *file.Seed
	}
	if file.NCrossValidations != nil {
		cfg.NCrossValidations = *file.NCrossValidations
	}
	if file.TelescopeEventsKey != "" {
		cfg.TelescopeEventsKey = file.TelescopeEventsKey
	}
	if file.ArrayEventsKey != "" {
		cfg.ArrayEventsKey = file.ArrayEventsKey
	}
	if file.RunsKey != "" {
		cfg.RunsKey = file.RunsKey
	}
	if file.MultipleTelescopes != nil {
		cfg.MultipleTelescopes = *file.MultipleTelescopes
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if len(file.Selection) > 0 {
		cfg.Selection = file.Selection
	}
	if file.Disp != nil {
		mergeDispConfig(&cfg.Disp, file.Disp)
	}
}

func mergeDispConfig(disp *DispSettings, file *DispFileConfig) {
	if file.DispRegressor != nil {
		disp.DispRegressor = *file.DispRegressor
	}
	if file.SignClassifier != nil {
		disp.SignClassifier = *file.SignClassifier
	}
	if file.CoordinateTransformation != "" {
		disp.CoordinateTransformation = CoordinateSystem(file.CoordinateTransformation)
	}
	if file.SourceAzColumn != "" {
		disp.SourceAzColumn = file.SourceAzColumn
	}
	if file.SourceZdColumn != "" {
		disp.SourceZdColumn = file.SourceZdColumn
	}
	if file.PointingAzColumn != "" {
		disp.PointingAzColumn = file.PointingAzColumn
	}
	if file.PointingZdColumn != "" {
		disp.PointingZdColumn = file.PointingZdColumn
	}
	if file.CogXColumn != "" {
		disp.CogXColumn = file.CogXColumn
	}
	if file.CogYColumn != "" {
		disp.CogYColumn = file.CogYColumn
	}
	if file.DeltaColumn != "" {
		disp.DeltaColumn = file.DeltaColumn
	}
	if file.DeltaUnit != "" {
		disp.DeltaUnit = AngleUnit(file.DeltaUnit)
	}
	if file.ArrayEventColumn != "" {
		disp.ArrayEventColumn = file.ArrayEventColumn
	}
	if file.NSignal != nil {
		disp.NSignal = *file.NSignal
	}
	if file.LogTarget != nil {
		disp.LogTarget = *file.LogTarget
	}
	if len(file.Features) > 0 {
		disp.Features = file.Features
	}
	if file.FeatureGeneration != nil {
		disp.FeatureGeneration = FeatureGeneration{
			NeededColumns: file.FeatureGeneration.NeededColumns,
			Features:      file.FeatureGeneration.Features,
		}
	}
}

// mergeEnvConfig applies AICT_* environment overrides.
func (l *Loader) mergeEnvConfig(cfg *AnalysisConfig) {
	cfg.Seed = l.envInt(EnvSeed, cfg.Seed)
	cfg.NCrossValidations = l.envInt(EnvNCrossValidations, cfg.NCrossValidations)
	cfg.TelescopeEventsKey = l.envString(EnvTelescopeEventsKey, cfg.TelescopeEventsKey)
	cfg.ArrayEventsKey = l.envString(EnvArrayEventsKey, cfg.ArrayEventsKey)
	cfg.RunsKey = l.envString(EnvRunsKey, cfg.RunsKey)
	cfg.MultipleTelescopes = l.envBool(EnvMultipleTelescopes, cfg.MultipleTelescopes)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Disp.NSignal = l.envInt(EnvDispNSignal, cfg.Disp.NSignal)
}
