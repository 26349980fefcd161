package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/v2xlab/obu/infra/logger"
)

// LoggingConfig defines the log level and optional file output with rotation.
type LoggingConfig struct {
	// Level is a zerolog level name. Empty keeps LOG_LEVEL.
	Level string `json:"level"`
	// File receives a copy of every log line when set.
	File string `json:"file"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.File != "" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
}

// Validate checks the level name and rotation limits.
func (c LoggingConfig) Validate() error {
	if c.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
			return fmt.Errorf("logging level: %w", err)
		}
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation limits must not be negative")
	}
	return nil
}

// Options converts the section for logger.Configure.
func (c LoggingConfig) Options() logger.Options {
	return logger.Options{
		Level:      c.Level,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
