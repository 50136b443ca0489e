package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/config"
	"github.com/blackwell-systems/shotprofile/internal/logging"
)

var (
	configPath string
	dbPath     string
	outPath    string
	logLevel   string
	logFormat  string

	// cfg is loaded once per invocation by loadConfig.
	cfg *config.Config

	// RootCmd is the root command for shotprofile
	RootCmd = &cobra.Command{
		Use:   "shotprofile",
		Short: "NBA shot log summaries, player shot profiles and BI extracts",
		Long: `shotprofile turns a SQLite log of NBA shot attempts into summary tables
for a BI tool and finds the zones a player shoots from most.

Each run:
  1. Aggregates attempts, makes, misses and accuracy per team, player
     and player/zone (seasons from 2019 on by default)
  2. Clusters one player's zones on accuracy and volume (k-means, k=5)
     and reports the most populous cluster, with an SVG scatter plot
  3. Writes team_data, player_data and shot_data to a DuckDB extract

Settings come from defaults, an optional YAML file (--config or
$SHOTPROFILE_CONFIG), SHOTPROFILE_* environment variables and flags,
in increasing precedence.

Examples:
  # Full run with defaults (nba_shots.db -> nba_shots.duckdb)
  shotprofile run

  # Profile another player without touching the extract
  shotprofile profile "Stephen Curry"

  # Print the team table
  shotprofile summary teams

  # Regenerate the extract whenever the shot log changes
  shotprofile watch`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $SHOTPROFILE_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "shot log SQLite path (default: nba_shots.db)")
	RootCmd.PersistentFlags().StringVar(&outPath, "out", "", "extract path (default: nba_shots.duckdb)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig layers global flags over the loaded configuration and sets up
// logging before any subcommand runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if dbPath != "" {
		c.Store.Path = dbPath
	}
	if outPath != "" {
		c.Export.Path = outPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	cfg = c
	return nil
}

// resolvePlayer maps a typed name through the configured alias file.
func resolvePlayer(name string) (string, error) {
	aliases, err := config.LoadPlayerAliases(cfg.AliasesPath)
	if err != nil {
		return "", fmt.Errorf("failed to load player aliases: %w", err)
	}
	return aliases.Resolve(name), nil
}
