// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aict-tools/aictconf/internal/validate"
)

// Validate validates an AnalysisConfig using the centralized validation package
func Validate(cfg AnalysisConfig) error {
	v := validate.New()

	v.NonNegative("Seed", cfg.Seed)
	v.Positive("NCrossValidations", cfg.NCrossValidations)

	v.Identifier("TelescopeEventsKey", cfg.TelescopeEventsKey)
	v.Identifier("ArrayEventsKey", cfg.ArrayEventsKey)
	v.Identifier("RunsKey", cfg.RunsKey)
	v.Unique("dataset keys", []string{cfg.TelescopeEventsKey, cfg.ArrayEventsKey, cfg.RunsKey})

	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			v.AddError("LogLevel", "unknown log level", cfg.LogLevel)
		}
	}

	for i, cut := range cfg.Selection {
		v.Identifier(fmt.Sprintf("Selection[%d].Column", i), cut.Column)
	}

	validateDisp(v, cfg.Disp)

	if !v.IsValid() {
		return v.Err()
	}

	return nil
}

func validateDisp(v *validate.Validator, disp DispSettings) {
	if err := disp.DispRegressor.Validate(); err != nil {
		v.AddError("Disp.DispRegressor", err.Error(), disp.DispRegressor.Type)
	} else if !disp.DispRegressor.Type.IsRegressor() {
		v.AddError("Disp.DispRegressor", "must be a regression model", disp.DispRegressor.Type)
	}

	if err := disp.SignClassifier.Validate(); err != nil {
		v.AddError("Disp.SignClassifier", err.Error(), disp.SignClassifier.Type)
	} else if !disp.SignClassifier.Type.IsClassifier() {
		v.AddError("Disp.SignClassifier", "must be a classification model", disp.SignClassifier.Type)
	}

	v.OneOf("Disp.CoordinateTransformation", string(disp.CoordinateTransformation),
		[]string{string(CoordinateCTA), string(CoordinateFACT)})
	v.OneOf("Disp.DeltaUnit", string(disp.DeltaUnit),
		[]string{string(UnitDeg), string(UnitRad)})

	for _, mapping := range disp.ColumnMappings() {
		v.Identifier("Disp."+mapping[0], mapping[1])
	}

	if disp.NSignal != 0 {
		v.Positive("Disp.NSignal", disp.NSignal)
	}

	if len(disp.Features) == 0 {
		v.AddError("Disp.Features", "feature list must not be empty", nil)
	}
	for _, feature := range disp.Features {
		v.Identifier("Disp.Features", feature)
	}
	v.Unique("Disp.Features", disp.Features)

	validateFeatureGeneration(v, disp)
}

func validateFeatureGeneration(v *validate.Validator, disp DispSettings) {
	gen := disp.FeatureGeneration

	configured := make(map[string]struct{}, len(disp.Features))
	for _, feature := range disp.Features {
		configured[feature] = struct{}{}
	}

	for name, expr := range gen.Features {
		v.Identifier("Disp.FeatureGeneration.Features", name)
		if expr == "" {
			v.AddError("Disp.FeatureGeneration.Features", "expression must not be empty", name)
		}
		if _, clash := configured[name]; clash {
			v.AddError("Disp.FeatureGeneration.Features", "generated feature shadows a configured feature", name)
		}
	}

	for _, column := range gen.NeededColumns {
		v.Identifier("Disp.FeatureGeneration.NeededColumns", column)
	}
	v.Unique("Disp.FeatureGeneration.NeededColumns", gen.NeededColumns)
}
