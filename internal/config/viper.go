// Package config provides configuration access backed by Viper, merging
// config files, environment variables, and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/tradeops/traderecon/pkg/errors"
)

// Viper keys and their defaults.
const (
	KeyAmountTolerance = "amount_tolerance"
	KeyTimeTolerance   = "time_tolerance"
	KeyWorkers         = "workers"
	KeyDuplicates      = "duplicates"
	KeyAnalyzeModel    = "analyze_model"
	KeyAnalyzeAttempts = "analyze_attempts"
)

// Environment variables checked for the analysis API key, in order.
var apiKeyEnvVars = []string{
	"GEMINI_API_KEY",
	"GOOGLE_API_KEY",
}

// SetDefaults registers default values for all reconciliation settings.
// Call once before reading settings.
func SetDefaults() {
	viper.SetDefault(KeyAmountTolerance, 0.01)
	viper.SetDefault(KeyTimeTolerance, time.Second)
	viper.SetDefault(KeyWorkers, 1)
	viper.SetDefault(KeyDuplicates, "reject")
	viper.SetDefault(KeyAnalyzeModel, "gemini-2.0-flash")
	viper.SetDefault(KeyAnalyzeAttempts, 2)
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	// Check OS env directly first
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// Settings holds the resolved reconciliation configuration.
type Settings struct {
	AmountTolerance float64
	TimeTolerance   time.Duration
	Workers         int
	Duplicates      string
	AnalyzeModel    string
	AnalyzeAttempts int
}

// Load resolves settings from Viper.
func Load() Settings {
	return Settings{
		AmountTolerance: viper.GetFloat64(KeyAmountTolerance),
		TimeTolerance:   viper.GetDuration(KeyTimeTolerance),
		Workers:         viper.GetInt(KeyWorkers),
		Duplicates:      viper.GetString(KeyDuplicates),
		AnalyzeModel:    viper.GetString(KeyAnalyzeModel),
		AnalyzeAttempts: viper.GetInt(KeyAnalyzeAttempts),
	}
}

// GeminiAPIKey retrieves the API key for the analysis collaborator.
// It returns an error wrapping errors.ErrAPIKeyRequired when no key is set.
func GeminiAPIKey() (string, error) {
	for _, name := range apiKeyEnvVars {
		if key := GetString(name); key != "" {
			return key, nil
		}
	}
	return "", &errors.ConfigError{
		Component: "analysis",
		Message:   "set GEMINI_API_KEY to enable exception analysis",
		Err:       errors.ErrAPIKeyRequired,
	}
}

// BindEnvVars explicitly binds API key environment variables to Viper so
// values loaded from .env files are visible through Viper lookups.
func BindEnvVars() {
	for _, name := range apiKeyEnvVars {
		_ = viper.BindEnv(name)
	}
}
