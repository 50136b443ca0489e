package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/analyzer"
	"github.com/blackwell-systems/shotprofile/internal/extract"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the shot log, player and extract destination",
	Long: `Runs diagnostic checks before a run.

Checks:
  • Shot log exists and has the required nba_shots columns
  • Shots exist in the configured season range
  • The configured player has shots in range
  • The extract directory exists and any existing extract is readable

Critical failures exit non-zero; warnings do not.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// doctorReport counts issues while printing check results.
type doctorReport struct {
	w        io.Writer
	critical int
	warnings int
}

func (r *doctorReport) ok(format string, a ...any) {
	fmt.Fprintf(r.w, "✓ "+format+"\n", a...)
}

func (r *doctorReport) fail(action, format string, a ...any) {
	r.critical++
	fmt.Fprintf(r.w, "✗ "+format+"\n", a...)
	if action != "" {
		fmt.Fprintf(r.w, "  Action: %s\n", action)
	}
}

func (r *doctorReport) warn(action, format string, a ...any) {
	r.warnings++
	fmt.Fprintf(r.w, "⚠ "+format+"\n", a...)
	if action != "" {
		fmt.Fprintf(r.w, "  Action: %s\n", action)
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r := &doctorReport{w: cmd.OutOrStdout()}

	fmt.Fprintln(r.w, "Running shotprofile diagnostics...")
	fmt.Fprintln(r.w)

	// Check 1: shot log
	st, err := store.Open(ctx, cfg.Store.Path)
	var missing *store.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		r.fail("Rebuild the shot log with the nba_shots schema",
			"Shot log %s is missing columns: %v", cfg.Store.Path, missing.Columns)
	case err != nil:
		r.fail("Point --db or store.path at the shot log", "Shot log unavailable: %v", err)
	default:
		defer st.Close()
		r.ok("Shot log found: %s", cfg.Store.Path)
		checkShots(cmd, r, st)
	}

	// Check 2: extract destination
	dir := filepath.Dir(cfg.Export.Path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		r.fail("Create the directory or change --out", "Extract directory does not exist: %s", dir)
	} else {
		r.ok("Extract directory exists: %s", dir)
	}

	if _, err := os.Stat(cfg.Export.Path); err == nil {
		counts, err := extract.Inspect(ctx, cfg.Export.Path)
		if err != nil {
			r.warn("Rerun 'shotprofile export' in create mode", "Existing extract is unreadable: %v", err)
		} else {
			r.ok("Existing extract has %d of 3 tables", len(counts))
		}
	}

	fmt.Fprintln(r.w)
	switch {
	case r.critical > 0:
		return fmt.Errorf("diagnostics found %d critical issue(s)", r.critical)
	case r.warnings > 0:
		fmt.Fprintf(r.w, "%d warning(s). The pipeline can still run.\n", r.warnings)
	default:
		fmt.Fprintln(r.w, "All checks passed.")
	}
	return nil
}

func checkShots(cmd *cobra.Command, r *doctorReport, st *store.Store) {
	ctx := cmd.Context()
	minSeason := cfg.Store.MinSeason

	n, err := st.CountShots(ctx, minSeason)
	if err != nil {
		r.fail("", "Cannot count shots: %v", err)
		return
	}
	if n == 0 {
		r.warn("Lower store.min_season or load newer seasons", "No shots from season %d on", minSeason)
		return
	}
	r.ok("%s shots from season %d on", humanize.Comma(n), minSeason)

	if cfg.Analysis.Player == "" {
		return
	}
	player, err := resolvePlayer(cfg.Analysis.Player)
	if err != nil {
		r.warn("Fix the aliases file", "%v", err)
		return
	}

	zones, err := st.RunAggregate(ctx, store.ZoneAggregate, minSeason)
	if err != nil {
		r.fail("", "Cannot aggregate zones: %v", err)
		return
	}
	rows := analyzer.New(zones).PlayerZones(player)
	if len(rows) == 0 {
		r.warn("Run 'shotprofile profile --list' to see available players",
			"Player %q has no shots in range; the profile step will be skipped", player)
		return
	}
	r.ok("Player %q has %d shot zones", player, len(rows))
}
