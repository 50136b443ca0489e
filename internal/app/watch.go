package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/shotprofile/internal/logging"
	"github.com/blackwell-systems/shotprofile/internal/pipeline"
	"github.com/blackwell-systems/shotprofile/internal/watcher"
)

var (
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the extract whenever the shot log changes",
	Long: `Watches the shot log file and reruns the full job after it changes.

Every rerun regenerates all three tables from the whole log; nothing is
applied incrementally. Bursts of writes are collapsed into one run after
the log has been quiet for the debounce interval. Failed runs are logged
and watching continues. Stop with Ctrl-C or SIGTERM.`,
	Example: `  # Run now, then on every change
  shotprofile watch

  # Wait for 10s of quiet before rerunning
  shotprofile watch --debounce 10s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before rerunning (default from config)")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "wait for the first change instead of running immediately")

	// Register with root command
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce := cfg.Watch.Debounce
	if watchDebounce > 0 {
		debounce = watchDebounce
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
	p := pipeline.New(opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rerun := func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	}

	if !watchNoInitial {
		if err := rerun(ctx); err != nil {
			logging.Warn().Err(err).Msg("Initial run failed, waiting for changes")
		}
	}

	w, err := watcher.New(cfg.Store.Path, debounce, rerun)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", cfg.Store.Path)
	return w.Run(ctx)
}
