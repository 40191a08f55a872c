// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Import   ImportConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ImportConfig holds source/output settings for a conversion run.
type ImportConfig struct {
	// SourcePath is the semicolon-delimited legacy export to read
	SourcePath string `env:"IMPORT_SOURCE_PATH"`

	// OutputPath is where the generated SQL script is written (default: import_legacy.sql)
	OutputPath string `env:"IMPORT_OUTPUT_PATH" default:"import_legacy.sql"`

	// SourceEncoding is the character encoding of the export: utf-8 or windows-1252 (default: utf-8)
	SourceEncoding string `env:"IMPORT_SOURCE_ENCODING" default:"utf-8"`

	// Timezone is the IANA zone the legacy dates are expressed in (default: Local)
	Timezone string `env:"IMPORT_TIMEZONE" default:"Local"`

	// ReferenceFile optionally overrides the compiled-in reference tables
	ReferenceFile string `env:"IMPORT_REFERENCE_FILE"`

	// AtomicWrite writes to a temp file and renames it into place (default: true)
	AtomicWrite bool `env:"IMPORT_ATOMIC_WRITE" default:"true"`
}

// DatabaseConfig holds settings for applying the script to a live database.
type DatabaseConfig struct {
	// ApplyEnabled executes the generated script after writing it (default: false)
	ApplyEnabled bool `env:"APPLY_ENABLED" default:"false"`

	// Driver selects the target: mysql or postgres (default: mysql)
	Driver string `env:"DATABASE_DRIVER" default:"mysql"`

	// URL is the connection string, required only when ApplyEnabled is set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// ApplyTimeout bounds the whole apply transaction (default: 5m)
	ApplyTimeout time.Duration `env:"APPLY_TIMEOUT" default:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Location resolves Import.Timezone. "Local" and "" map to time.Local.
func (c *ImportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
