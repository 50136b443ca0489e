// Package config loads shotprofile settings from defaults, an optional YAML
// file and SHOTPROFILE_* environment variables, and parses player aliases.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full runtime configuration.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Export   ExportConfig   `koanf:"export"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Plot     PlotConfig     `koanf:"plot"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Watch    WatchConfig    `koanf:"watch"`

	// AliasesPath points at a "alias = Player Name" file. Optional.
	AliasesPath string `koanf:"aliases_path"`
}

// StoreConfig locates the shot log.
type StoreConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MinSeason int    `koanf:"min_season" validate:"min=1946"`
}

// ExportConfig controls the extract file.
type ExportConfig struct {
	Path string `koanf:"path" validate:"required"`
	// Mode is create (replace the file) or update (append to it).
	Mode string `koanf:"mode" validate:"oneof=create update"`
	// ParquetDir, when set, receives a Parquet copy of each table.
	ParquetDir string `koanf:"parquet_dir"`
}

// AnalysisConfig controls the best shot profile step.
type AnalysisConfig struct {
	// Player is analyzed on every run; empty skips the analysis.
	Player        string `koanf:"player"`
	Clusters      int    `koanf:"clusters" validate:"min=1"`
	Seed          int64  `koanf:"seed"`
	MaxIterations int    `koanf:"max_iterations" validate:"min=1"`
	NInit         int    `koanf:"n_init" validate:"min=1"`
}

// PlotConfig controls the cluster scatter plot.
type PlotConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir" validate:"required_if=Enabled true"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	File string `koanf:"file"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce" validate:"min=0"`
}

// Default returns the built-in configuration: fixed local paths, the
// 2019 season cutoff and five clusters.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:      "nba_shots.db",
			MinSeason: 2019,
		},
		Export: ExportConfig{
			Path: "nba_shots.duckdb",
			Mode: "create",
		},
		Analysis: AnalysisConfig{
			Player:        "LeBron James",
			Clusters:      5,
			Seed:          0,
			MaxIterations: 300,
			NInit:         10,
		},
		Plot: PlotConfig{
			Enabled: true,
			Dir:     "plots",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
