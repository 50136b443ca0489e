package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/analyzer"
	"github.com/blackwell-systems/shotprofile/internal/output"
	"github.com/blackwell-systems/shotprofile/internal/pipeline"
	"github.com/blackwell-systems/shotprofile/internal/plot"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

var (
	profileNoPlot bool
	profileList   bool
)

var profileCmd = &cobra.Command{
	Use:   "profile [player]",
	Short: "Cluster a player's shot zones and show the best shot profile",
	Long: `Clusters a player's shot zones on accuracy and attempts and prints the
zones in the most populous cluster. The extract is not touched.

The player defaults to analysis.player from the config. Names may be
aliases from the aliases file. A scatter plot of the clusters on their
first two principal components is written to the plot directory unless
--no-plot is given.`,
	Example: `  # Configured player
  shotprofile profile

  # A specific player, no plot
  shotprofile profile "Stephen Curry" --no-plot

  # List the players that can be profiled
  shotprofile profile --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&profileNoPlot, "no-plot", false, "skip the SVG scatter plot")
	profileCmd.Flags().BoolVar(&profileList, "list", false, "list players with shots in range")

	// Register with root command
	RootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if profileList {
		return listPlayers(cmd)
	}

	name := cfg.Analysis.Player
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		return errors.New("no player given and analysis.player is not set")
	}
	player, err := resolvePlayer(name)
	if err != nil {
		return err
	}
	cfg.Analysis.Player = player
	if profileNoPlot {
		cfg.Plot.Enabled = false
	}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.SkipExport = true

	res, err := pipeline.New(opts).Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Profile == nil {
		return fmt.Errorf("%w: %s (seasons %d+); run 'shotprofile profile --list' to see available players",
			analyzer.ErrPlayerNotFound, player, cfg.Store.MinSeason)
	}

	fmt.Fprint(out, output.RenderProfile(res.Profile))
	if cfg.Plot.Enabled {
		fmt.Fprintf(out, "\nPlot written to %s\n", plotPath(player))
	}
	return nil
}

func listPlayers(cmd *cobra.Command) error {
	st, err := store.Open(cmd.Context(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	zones, err := st.RunAggregate(cmd.Context(), store.ZoneAggregate, cfg.Store.MinSeason)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range analyzer.New(zones).Players() {
		fmt.Fprintln(out, p)
	}
	return nil
}

func plotPath(player string) string {
	return plot.NewSVGRenderer(cfg.Plot.Dir).PathFor(player)
}
