// SPDX-License-Identifier: MIT

// Package config loads, validates and persists the analysis configuration
// for disp (source position) reconstruction. Configuration precedence is
// defaults < YAML file < AICT_* environment variables; files are parsed
// strictly and a configuration is only ever applied as a whole.
package config
