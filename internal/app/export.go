package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/extract"
	"github.com/blackwell-systems/shotprofile/internal/output"
	"github.com/blackwell-systems/shotprofile/internal/pipeline"
)

var (
	exportMode       string
	exportParquetDir string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the summary tables to the extract without profiling",
	Long: `Aggregates the shot log and writes team_data, player_data and shot_data
to the extract. No player is analyzed.

In create mode (the default) the extract is rebuilt beside the target and
moved into place, so a failed export leaves the previous file intact. In
update mode rows are appended to the existing tables; a table whose columns
do not match is an error.`,
	Example: `  # Rebuild nba_shots.duckdb
  shotprofile export

  # Append to a different extract
  shotprofile export --out warehouse.duckdb --mode update`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportMode, "mode", "", "extract mode: create or update")
	exportCmd.Flags().StringVar(&exportParquetDir, "parquet-dir", "", "also write each table as Parquet into this directory")

	// Register with root command
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportMode != "" {
		cfg.Export.Mode = exportMode
	}
	if exportParquetDir != "" {
		cfg.Export.ParquetDir = exportParquetDir
	}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Player = ""

	steps := output.NewSteps(2)
	steps.SetWriter(cmd.OutOrStdout())
	opts.Reporter = steps

	if _, err := pipeline.New(opts).Run(cmd.Context()); err != nil {
		return err
	}

	counts, err := extract.Inspect(cmd.Context(), cfg.Export.Path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n\n", cfg.Export.Path)
	fmt.Fprint(out, output.RenderExtractCounts(extractTableNames(), counts))
	return nil
}

func extractTableNames() []string {
	return []string{extract.TeamTable.Name, extract.PlayerTable.Name, extract.ShotTable.Name}
}
