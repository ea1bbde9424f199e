// SPDX-License-Identifier: MIT

package config

import (
	"github.com/aict-tools/aictconf/internal/model"
	"github.com/aict-tools/aictconf/internal/selection"
)

// CoordinateSystem selects the coordinate transformation of the instrument.
type CoordinateSystem string

const (
	CoordinateCTA  CoordinateSystem = "CTA"
	CoordinateFACT CoordinateSystem = "FACT"
)

// AngleUnit is the unit of the orientation angle column.
type AngleUnit string

const (
	UnitDeg AngleUnit = "deg"
	UnitRad AngleUnit = "rad"
)

// FileConfig represents the YAML configuration structure.
// Optional fields use pointers to distinguish "not set" from explicit zero
// values during the merge.
type FileConfig struct {
	Seed               *int           `yaml:"seed,omitempty"`
	NCrossValidations  *int           `yaml:"n_cross_validations,omitempty"`
	TelescopeEventsKey string         `yaml:"telescope_events_key,omitempty"`
	ArrayEventsKey     string         `yaml:"array_events_key,omitempty"`
	RunsKey            string         `yaml:"runs_key,omitempty"`
	MultipleTelescopes *bool          `yaml:"multiple_telescopes,omitempty"`
	LogLevel           string         `yaml:"log_level,omitempty"`
	Selection          selection.Cuts `yaml:"selection,omitempty"`

	Disp *DispFileConfig `yaml:"disp,omitempty"`
}

// DispFileConfig holds the disp reconstruction block as written in YAML.
type DispFileConfig struct {
	DispRegressor  *model.Spec `yaml:"disp_regressor,omitempty"`
	SignClassifier *model.Spec `yaml:"sign_classifier,omitempty"`

	CoordinateTransformation string `yaml:"coordinate_transformation,omitempty"`

	// Column mappings into the telescope events table
	SourceAzColumn   string `yaml:"source_az_column,omitempty"`
	SourceZdColumn   string `yaml:"source_zd_column,omitempty"`
	PointingAzColumn string `yaml:"pointing_az_column,omitempty"`
	PointingZdColumn string `yaml:"pointing_zd_column,omitempty"`
	CogXColumn       string `yaml:"cog_x_column,omitempty"`
	CogYColumn       string `yaml:"cog_y_column,omitempty"`
	DeltaColumn      string `yaml:"delta_column,omitempty"`
	DeltaUnit        string `yaml:"delta_unit,omitempty"`
	ArrayEventColumn string `yaml:"array_event_column,omitempty"`

	NSignal   *int  `yaml:"n_signal,omitempty"`
	LogTarget *bool `yaml:"log_target,omitempty"`

	Features          []string                 `yaml:"features,omitempty"`
	FeatureGeneration *FeatureGenerationConfig `yaml:"feature_generation,omitempty"`
}

// FeatureGenerationConfig declares derived features. Expressions are carried
// as opaque strings for the host; only names and shape are validated here.
type FeatureGenerationConfig struct {
	NeededColumns []string          `yaml:"needed_columns,omitempty"`
	Features      map[string]string `yaml:"features,omitempty"`
}

// AnalysisConfig is the resolved runtime configuration.
type AnalysisConfig struct {
	Version string

	Seed               int
	NCrossValidations  int
	TelescopeEventsKey string
	ArrayEventsKey     string
	RunsKey            string
	MultipleTelescopes bool
	LogLevel           string

	Selection selection.Cuts

	Disp DispSettings
}

// DispSettings is the resolved disp reconstruction configuration.
type DispSettings struct {
	DispRegressor  model.Spec
	SignClassifier model.Spec

	CoordinateTransformation CoordinateSystem

	SourceAzColumn   string
	SourceZdColumn   string
	PointingAzColumn string
	PointingZdColumn string
	CogXColumn       string
	CogYColumn       string
	DeltaColumn      string
	DeltaUnit        AngleUnit
	ArrayEventColumn string

	NSignal   int // sample cap, 0 means no cap
	LogTarget bool

	Features          []string
	FeatureGeneration FeatureGeneration
}

// FeatureGeneration is the resolved derived-feature declaration.
type FeatureGeneration struct {
	NeededColumns []string
	Features      map[string]string
}

// ColumnMappings returns the configured column mappings keyed by their
// config field name, in a stable order.
func (d DispSettings) ColumnMappings() [][2]string {
	return [][2]string{
		{"source_az_column", d.SourceAzColumn},
		{"source_zd_column", d.SourceZdColumn},
		{"pointing_az_column", d.PointingAzColumn},
		{"pointing_zd_column", d.PointingZdColumn},
		{"cog_x_column", d.CogXColumn},
		{"cog_y_column", d.CogYColumn},
		{"delta_column", d.DeltaColumn},
		{"array_event_column", d.ArrayEventColumn},
	}
}
