package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/output"
	"github.com/blackwell-systems/shotprofile/internal/pipeline"
)

var (
	runPlayer     string
	runNoPlot     bool
	runMode       string
	runParquetDir string
	runQuiet      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate, profile a player and write the extract",
	Long: `Runs the full job once:

  • Aggregates the shot log into team, player and player/zone summaries
  • Clusters the configured player's zones and prints the best shot profile
  • Writes team_data, player_data and shot_data to the extract

A player with no shots in range is reported and skipped; the extract is
still written. Any store or extract error fails the run.`,
	Example: `  # Defaults: LeBron James, nba_shots.db -> nba_shots.duckdb
  shotprofile run

  # Another player, appending to an existing extract
  shotprofile run --player "Nikola Jokic" --mode update

  # Also write Parquet copies
  shotprofile run --parquet-dir parquet/`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPlayer, "player", "", "player to profile (default from config)")
	runCmd.Flags().BoolVar(&runNoPlot, "no-plot", false, "skip the SVG scatter plot")
	runCmd.Flags().StringVar(&runMode, "mode", "", "extract mode: create or update")
	runCmd.Flags().StringVar(&runParquetDir, "parquet-dir", "", "also write each table as Parquet into this directory")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the profile")

	// Register with root command
	RootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runPlayer != "" {
		cfg.Analysis.Player = runPlayer
	}
	if runNoPlot {
		cfg.Plot.Enabled = false
	}
	if runMode != "" {
		cfg.Export.Mode = runMode
	}
	if runParquetDir != "" {
		cfg.Export.ParquetDir = runParquetDir
	}

	player, err := resolvePlayer(cfg.Analysis.Player)
	if err != nil {
		return err
	}
	cfg.Analysis.Player = player

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	stages := 2
	if opts.Player != "" {
		stages++
	}
	steps := output.NewSteps(stages)
	steps.SetWriter(cmd.OutOrStdout())
	opts.Reporter = steps

	res, err := pipeline.New(opts).Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Profile != nil && !runQuiet {
		fmt.Fprintf(out, "\n%s", output.RenderProfile(res.Profile))
		if cfg.Plot.Enabled {
			fmt.Fprintf(out, "\nPlot written to %s\n", plotPath(res.Profile.Player))
		}
	}
	fmt.Fprintf(out, "\nExtract written to %s (run %s, %s)\n", cfg.Export.Path, res.RunID, res.Duration.Round(time.Millisecond))
	return nil
}
