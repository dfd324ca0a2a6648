// Package config defines the loadmetrics configuration and its defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/pable/go-load-metrics/internal/model"
)

// Columns maps pipeline fields to header names in the input sheet.
// Defaults match the GPS vendor export the tool was first written for.
type Columns struct {
	Team     string `koanf:"team" validate:"required"`
	MatchDay string `koanf:"match_day" validate:"required"`
	Date     string `koanf:"date" validate:"required"`
	Player   string `koanf:"player" validate:"required"`
	Position string `koanf:"position" validate:"required"`
	Load     string `koanf:"load" validate:"required"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// Team is the cohort kept by the normalizer; other rows are dropped.
	Team string `koanf:"team" validate:"required"`

	// GroupBy is the second grouping column for reference statistics: position or player.
	GroupBy string `koanf:"group_by" validate:"oneof=position player"`

	// SingletonPolicy decides what deduplication does with single-entry days.
	SingletonPolicy string `koanf:"singleton_policy" validate:"oneof=preserve legacy-drop"`

	// MatchDayMarker is the token that follows the signed offset in match-day labels.
	MatchDayMarker string `koanf:"match_day_marker" validate:"required"`

	// Sheet is the XLSX sheet to read. Empty means the first sheet.
	Sheet string `koanf:"sheet"`

	// Metrics lists the tracked numeric columns. Empty means discover them from the sheet.
	Metrics []string `koanf:"metrics" validate:"dive,required"`

	Columns Columns `koanf:"columns"`

	// CachePath is the SQLite file memoizing scored datasets.
	CachePath string `koanf:"cache_path" validate:"required"`

	// MetricsFile, when set, receives pipeline counters in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		GroupBy:         string(model.GroupByPosition),
		SingletonPolicy: string(model.SingletonPreserve),
		MatchDayMarker:  "MD",
		Columns: Columns{
			Team:     "Team Name",
			MatchDay: "Match Day",
			Date:     "Date - Session Date",
			Player:   "Player Full Name (P)",
			Position: "Position (P)",
			Load:     "Distance - Distance (m)",
		},
		CachePath: filepath.Join(userHome(), ".loadmetrics", "cache.db"),
	}
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

var validate = validator.New()

// Validate checks every field, including the ones only a pipeline run needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// validateBase checks everything except Team, which commands that only read
// the cache do not need.
func (c *Config) validateBase() error {
	if err := validate.StructExcept(c, "Team"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Grouping returns the configured grouping key.
func (c *Config) Grouping() model.GroupBy { return model.GroupBy(c.GroupBy) }

// Policy returns the configured singleton policy.
func (c *Config) Policy() model.SingletonPolicy { return model.SingletonPolicy(c.SingletonPolicy) }
