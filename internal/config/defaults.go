// SPDX-License-Identifier: MIT

package config

import "github.com/aict-tools/aictconf/internal/model"

// Default returns the built-in analysis configuration. File and environment
// values are merged on top of it.
func Default() AnalysisConfig {
	return AnalysisConfig{
		Seed:               0,
		NCrossValidations:  5,
		TelescopeEventsKey: "telescope_events",
		ArrayEventsKey:     "array_events",
		RunsKey:            "runs",
		MultipleTelescopes: true,
		LogLevel:           "info",

		Disp: DispSettings{
			DispRegressor: model.Spec{
				Type:   model.RandomForestRegressor,
				Params: model.Params{"n_estimators": int64(100)},
			},
			SignClassifier: model.Spec{
				Type:   model.RandomForestClassifier,
				Params: model.Params{"n_estimators": int64(100)},
			},

			CoordinateTransformation: CoordinateCTA,

			SourceAzColumn:   "source_azimuth",
			SourceZdColumn:   "source_zenith",
			PointingAzColumn: "pointing_azimuth",
			PointingZdColumn: "pointing_zenith",
			CogXColumn:       "cog_x",
			CogYColumn:       "cog_y",
			DeltaColumn:      "delta",
			DeltaUnit:        UnitDeg,
			ArrayEventColumn: "array_event_id",

			Features: []string{
				"intensity",
				"length",
				"width",
				"skewness",
				"kurtosis",
				"num_triggered_telescopes",
				"total_intensity",
				"average_intensity",
			},
		},
	}
}
