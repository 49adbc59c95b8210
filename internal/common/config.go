package common

import (
	"os"
	"strconv"
)

// Config holds all subsystem configuration
type Config struct {
	Schemas     SchemasConfig
	Corrections CorrectionsConfig
}

// SchemasConfig holds schema-store configuration
type SchemasConfig struct {
	FilePath       string
	MatchThreshold float64
}

// CorrectionsConfig holds correction-history configuration
type CorrectionsConfig struct {
	FilePath       string
	MaxCorrections int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Schemas: SchemasConfig{
			FilePath:       getEnv("SCHEMAS_FILE", "schemas.json"),
			MatchThreshold: getEnvAsFloat64("SCHEMA_MATCH_THRESHOLD", 5.0),
		},
		Corrections: CorrectionsConfig{
			FilePath:       getEnv("CORRECTIONS_FILE", "corrections.json"),
			MaxCorrections: getEnvAsInt("MAX_CORRECTIONS", 10000),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Schemas.FilePath == "" {
		return NewAppError("CONFIG_ERROR", "SCHEMAS_FILE is required", ErrInvalidSchema)
	}
	if c.Corrections.FilePath == "" {
		return NewAppError("CONFIG_ERROR", "CORRECTIONS_FILE is required", ErrLoadFailed)
	}
	if c.Corrections.MaxCorrections <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_CORRECTIONS must be positive", ErrLoadFailed)
	}
	return nil
}
