package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/output"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

var (
	summaryLimit     int
	summaryPlayer    string
	summaryMinSeason int
)

var summaryCmd = &cobra.Command{
	Use:   "summary [teams|players|zones]",
	Short: "Print a summary table from the shot log",
	Long: `Prints one of the three summary tables without writing the extract.

  teams    attempts, makes, misses and accuracy per team
  players  the same per player
  zones    the same per player and shot zone

Rows are ordered by attempts, highest first.`,
	Example: `  # Top 20 teams by volume
  shotprofile summary

  # Every zone for one player
  shotprofile summary zones --player "LeBron James" --limit 0

  # Players since the 2022 season
  shotprofile summary players --min-season 2022`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"teams", "players", "zones"},
	RunE:      runSummary,
}

func init() {
	summaryCmd.Flags().IntVarP(&summaryLimit, "limit", "n", 20, "maximum rows to show (0 for all)")
	summaryCmd.Flags().StringVar(&summaryPlayer, "player", "", "only rows for this player (players and zones)")
	summaryCmd.Flags().IntVar(&summaryMinSeason, "min-season", 0, "earliest season to include (default from config)")

	// Register with root command
	RootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	kind := "teams"
	if len(args) == 1 {
		kind = strings.ToLower(args[0])
	}

	var agg store.Aggregate
	var headers []string
	switch kind {
	case "teams", "team":
		agg, headers = store.TeamAggregate, []string{"Team"}
	case "players", "player":
		agg, headers = store.PlayerAggregate, []string{"Player"}
	case "zones", "zone", "shots":
		agg, headers = store.ZoneAggregate, []string{"Player", "Zone"}
	default:
		return fmt.Errorf("unknown table %q (want teams, players or zones)", args[0])
	}

	minSeason := cfg.Store.MinSeason
	if summaryMinSeason != 0 {
		minSeason = summaryMinSeason
	}

	st, err := store.Open(cmd.Context(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.RunAggregate(cmd.Context(), agg, minSeason)
	if err != nil {
		return err
	}

	if summaryPlayer != "" && agg.Keys[0] == "player_name" {
		player, err := resolvePlayer(summaryPlayer)
		if err != nil {
			return err
		}
		rows = filterByFirstKey(rows, player)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (seasons %d+)\n\n", agg.Name, minSeason)
	fmt.Fprint(out, output.RenderSummaryTable(headers, rows, summaryLimit))
	return nil
}

func filterByFirstKey(rows []store.SummaryRow, key string) []store.SummaryRow {
	var kept []store.SummaryRow
	for _, r := range rows {
		if r.Key(0) == key {
			kept = append(kept, r)
		}
	}
	return kept
}
