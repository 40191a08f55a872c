package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated populates a Config from the environment without running
// Validate. Callers that layer CLI flags on top validate afterwards.
func LoadUnvalidated() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Import validation
	if strings.TrimSpace(c.Import.SourcePath) == "" {
		errs = append(errs, "IMPORT_SOURCE_PATH is required")
	}
	if strings.TrimSpace(c.Import.OutputPath) == "" {
		errs = append(errs, "IMPORT_OUTPUT_PATH must not be empty")
	}
	validEncodings := map[string]bool{"utf-8": true, "utf8": true, "windows-1252": true, "cp1252": true}
	if !validEncodings[strings.ToLower(c.Import.SourceEncoding)] {
		errs = append(errs, fmt.Sprintf("IMPORT_SOURCE_ENCODING (%q) must be one of: utf-8, windows-1252", c.Import.SourceEncoding))
	}
	if _, err := c.Import.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("IMPORT_TIMEZONE (%q) is not a known time zone", c.Import.Timezone))
	}

	// Database validation
	if c.Database.ApplyEnabled {
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when APPLY_ENABLED is true")
		}
		validDrivers := map[string]bool{"mysql": true, "postgres": true}
		if !validDrivers[strings.ToLower(c.Database.Driver)] {
			errs = append(errs, fmt.Sprintf("DATABASE_DRIVER (%q) must be one of: mysql, postgres", c.Database.Driver))
		}
		if c.Database.ApplyTimeout <= 0 {
			errs = append(errs, "APPLY_TIMEOUT must be positive")
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Import: {Source: %q, Output: %q, Encoding: %q, Timezone: %q, References: %q}, ",
		c.Import.SourcePath, c.Import.OutputPath, c.Import.SourceEncoding, c.Import.Timezone, c.Import.ReferenceFile))
	b.WriteString(fmt.Sprintf("Database: {Apply: %v, Driver: %q, URL: [MASKED]}, ",
		c.Database.ApplyEnabled, c.Database.Driver))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
