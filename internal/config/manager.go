// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	xglog "github.com/aict-tools/aictconf/internal/log"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Save writes the configuration to disk in normalized form. The write is
// atomic and durable: the pending file is fsynced before the rename.
func (m *Manager) Save(cfg *AnalysisConfig) error {
	logger := xglog.WithComponent("config")

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	fileCfg := toFileConfig(cfg)

	pending, err := renameio.NewPendingFile(m.configPath)
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending config file")
		}
	}()

	enc := yaml.NewEncoder(pending)
	enc.SetIndent(2)
	if err := enc.Encode(fileCfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}

	logger.Info().
		Str(xglog.FieldPath, m.configPath).
		Str(xglog.FieldEvent, "config.saved").
		Msg("configuration written")

	return nil
}

// toFileConfig maps the runtime config back into the YAML transport form.
// Every field is written explicitly so the saved file is self-describing.
func toFileConfig(cfg *AnalysisConfig) FileConfig {
	disp := cfg.Disp
	fileDisp := &DispFileConfig{
		DispRegressor:            &disp.DispRegressor,
		SignClassifier:           &disp.SignClassifier,
		CoordinateTransformation: string(disp.CoordinateTransformation),
		SourceAzColumn:           disp.SourceAzColumn,
		SourceZdColumn:           disp.SourceZdColumn,
		PointingAzColumn:         disp.PointingAzColumn,
		PointingZdColumn:         disp.PointingZdColumn,
		CogXColumn:               disp.CogXColumn,
		CogYColumn:               disp.CogYColumn,
		DeltaColumn:              disp.DeltaColumn,
		DeltaUnit:                string(disp.DeltaUnit),
		ArrayEventColumn:         disp.ArrayEventColumn,
		Features:                 disp.Features,
	}
	if disp.NSignal != 0 {
		fileDisp.NSignal = intPtr(disp.NSignal)
	}
	if disp.LogTarget {
		fileDisp.LogTarget = boolPtr(disp.LogTarget)
	}
	if len(disp.FeatureGeneration.Features) > 0 || len(disp.FeatureGeneration.NeededColumns) > 0 {
		fileDisp.FeatureGeneration = &FeatureGenerationConfig{
			NeededColumns: disp.FeatureGeneration.NeededColumns,
			Features:      disp.FeatureGeneration.Features,
		}
	}

	return FileConfig{
		Seed:               intPtr(cfg.Seed),
		NCrossValidations:  intPtr(cfg.NCrossValidations),
		TelescopeEventsKey: cfg.TelescopeEventsKey,
		ArrayEventsKey:     cfg.ArrayEventsKey,
		RunsKey:            cfg.RunsKey,
		MultipleTelescopes: boolPtr(cfg.MultipleTelescopes),
		LogLevel:           cfg.LogLevel,
		Selection:          cfg.Selection,
		Disp:               fileDisp,
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
