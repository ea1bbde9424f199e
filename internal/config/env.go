// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aict-tools/aictconf/internal/log"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		if value == "" {
			logger.Debug().
				Str(log.FieldKey, key).
				Str("default", defaultValue).
				Str(log.FieldSource, "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		}
		logger.Debug().
			Str(log.FieldKey, key).
			Str("value", value).
			Str(log.FieldSource, "environment").
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str(log.FieldKey, key).
		Str("default", defaultValue).
		Str(log.FieldSource, "default").
		Msg("using default value")
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok {
		if v == "" {
			logger.Debug().
				Str(log.FieldKey, key).
				Int("default", defaultValue).
				Str(log.FieldSource, "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		}
		if i, err := strconv.Atoi(v); err == nil {
			logger.Debug().
				Str(log.FieldKey, key).
				Int("value", i).
				Str(log.FieldSource, "environment").
				Msg("using environment variable")
			return i
		}
		logger.Warn().
			Str(log.FieldKey, key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str(log.FieldKey, key).
		Int("default", defaultValue).
		Str(log.FieldSource, "default").
		Msg("using default value")
	return defaultValue
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok {
		if v == "" {
			logger.Debug().
				Str(log.FieldKey, key).
				Bool("default", defaultValue).
				Str(log.FieldSource, "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		}
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			logger.Debug().
				Str(log.FieldKey, key).
				Bool("value", true).
				Str(log.FieldSource, "environment").
				Msg("using environment variable")
			return true
		case "false", "0", "no":
			logger.Debug().
				Str(log.FieldKey, key).
				Bool("value", false).
				Str(log.FieldSource, "environment").
				Msg("using environment variable")
			return false
		default:
			logger.Warn().
				Str(log.FieldKey, key).
				Str("value", v).
				Bool("default", defaultValue).
				Msg("invalid boolean in environment variable, using default")
			return defaultValue
		}
	}
	logger.Debug().
		Str(log.FieldKey, key).
		Bool("default", defaultValue).
		Str(log.FieldSource, "default").
		Msg("using default value")
	return defaultValue
}
