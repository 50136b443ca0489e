// Package pipeline runs one pass of the shot profile job: aggregate the shot
// log, profile a player, write the extract.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/shotprofile/internal/analyzer"
	"github.com/blackwell-systems/shotprofile/internal/config"
	"github.com/blackwell-systems/shotprofile/internal/extract"
	"github.com/blackwell-systems/shotprofile/internal/logging"
	"github.com/blackwell-systems/shotprofile/internal/metrics"
	"github.com/blackwell-systems/shotprofile/internal/plot"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

// Reporter receives stage progress. *output.Steps implements it.
type Reporter interface {
	Begin(name string)
	Done(detail string)
	Skip(reason string)
	Fail(err error)
}

type nopReporter struct{}

func (nopReporter) Begin(string) {}
func (nopReporter) Done(string)  {}
func (nopReporter) Skip(string)  {}
func (nopReporter) Fail(error)   {}

// Options configures a Pipeline. Zero values for the optional fields
// disable the matching step.
type Options struct {
	StorePath string
	MinSeason int

	// Player to profile. Empty skips the analysis step.
	Player    string
	Clusterer analyzer.Clusterer
	Projector analyzer.Projector
	Renderer  analyzer.Renderer

	// SkipExport leaves the extract untouched.
	SkipExport bool
	ExportPath string
	ExportMode extract.Mode
	ParquetDir string

	Metrics     *metrics.Recorder
	MetricsFile string

	Reporter Reporter
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := extract.ParseMode(cfg.Export.Mode)
	if err != nil {
		return Options{}, err
	}

	km := analyzer.NewKMeans(cfg.Analysis.Clusters, cfg.Analysis.Seed)
	km.MaxIterations = cfg.Analysis.MaxIterations
	km.NInit = cfg.Analysis.NInit

	opts := Options{
		StorePath:   cfg.Store.Path,
		MinSeason:   cfg.Store.MinSeason,
		Player:      cfg.Analysis.Player,
		Clusterer:   km,
		Projector:   analyzer.PCA{},
		ExportPath:  cfg.Export.Path,
		ExportMode:  mode,
		ParquetDir:  cfg.Export.ParquetDir,
		MetricsFile: cfg.Metrics.File,
	}
	if cfg.Plot.Enabled {
		opts.Renderer = plot.NewSVGRenderer(cfg.Plot.Dir)
	}
	if cfg.Metrics.File != "" {
		opts.Metrics = metrics.New()
	}
	return opts, nil
}

// Result describes a completed run.
type Result struct {
	RunID     string
	Summaries *store.Summaries
	// Profile is nil when no player was configured or the player has no
	// shots in range.
	Profile  *analyzer.Profile
	Exported bool
	Duration time.Duration
}

// Pipeline runs the job with fixed options. Runs are sequential; a
// Pipeline may be reused.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.MinSeason == 0 {
		opts.MinSeason = store.DefaultMinSeason
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	return &Pipeline{opts: opts}
}

// skipError marks a stage that ended without doing its work but without
// failing the run.
type skipError struct {
	reason string
}

func (e skipError) Error() string { return e.reason }

// Run executes load, analyze and export. A missing player is logged and
// skipped; store and export failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx, "pipeline")
	start := time.Now()

	res = &Result{RunID: runID}
	log.Info().Str("store", p.opts.StorePath).Int("min_season", p.opts.MinSeason).Msg("Run started")

	defer func() {
		res.Duration = time.Since(start)
		p.finishMetrics(ctx, err == nil)
		if err != nil {
			log.Error().Err(err).Dur("elapsed", res.Duration).Msg("Run failed")
			return
		}
		log.Info().Dur("elapsed", res.Duration).Bool("exported", res.Exported).Msg("Run finished")
	}()

	err = p.stage(ctx, "aggregate", "Aggregating shot log", func(ctx context.Context) (string, error) {
		s, err := p.load(ctx)
		if err != nil {
			return "", err
		}
		res.Summaries = s
		return fmt.Sprintf("%d teams, %d players, %d zones", len(s.Teams), len(s.Players), len(s.Zones)), nil
	})
	if err != nil {
		return res, err
	}

	if p.opts.Player != "" {
		err = p.stage(ctx, "analyze", "Profiling "+p.opts.Player, func(ctx context.Context) (string, error) {
			profile, err := p.analyze(ctx, res.Summaries.Zones)
			if errors.Is(err, analyzer.ErrPlayerNotFound) {
				log.Warn().Str("player", p.opts.Player).Msg("Player has no shots in range, skipping profile")
				return "", skipError{reason: "no shots in range"}
			}
			if err != nil {
				return "", err
			}
			res.Profile = profile
			if p.opts.Metrics != nil {
				p.opts.Metrics.SetProfileRows(len(profile.Best))
			}
			return fmt.Sprintf("cluster %d, %d zones", profile.BestCluster, len(profile.Best)), nil
		})
		if err != nil {
			return res, err
		}
	}

	if !p.opts.SkipExport {
		err = p.stage(ctx, "export", "Writing extract", func(ctx context.Context) (string, error) {
			if err := p.export(ctx, res.Summaries); err != nil {
				return "", err
			}
			res.Exported = true
			return p.opts.ExportPath, nil
		})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

func (p *Pipeline) stage(ctx context.Context, metric, title string, fn func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.opts.Reporter.Begin(title)
	started := time.Now()
	detail, err := fn(ctx)
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveStage(metric, time.Since(started))
	}

	var skip skipError
	switch {
	case errors.As(err, &skip):
		p.opts.Reporter.Skip(skip.reason)
		return nil
	case err != nil:
		p.opts.Reporter.Fail(err)
		return err
	}
	p.opts.Reporter.Done(detail)
	return nil
}

func (p *Pipeline) load(ctx context.Context) (*store.Summaries, error) {
	st, err := store.Open(ctx, p.opts.StorePath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.LoadSummaries(ctx, p.opts.MinSeason)
}

func (p *Pipeline) analyze(ctx context.Context, zones []store.SummaryRow) (*analyzer.Profile, error) {
	var opts []analyzer.Option
	if p.opts.Clusterer != nil {
		opts = append(opts, analyzer.WithClusterer(p.opts.Clusterer))
	}
	if p.opts.Projector != nil {
		opts = append(opts, analyzer.WithProjector(p.opts.Projector))
	}
	if p.opts.Renderer != nil {
		opts = append(opts, analyzer.WithRenderer(p.opts.Renderer))
	}

	return analyzer.New(zones, opts...).BestShotProfile(ctx, p.opts.Player)
}

func (p *Pipeline) export(ctx context.Context, s *store.Summaries) error {
	opts := []extract.WriteOption{
		extract.WithTableCallback(func(def extract.TableDefinition, rows int) {
			if p.opts.Metrics != nil {
				p.opts.Metrics.SetTableRows(def.Name, rows)
			}
		}),
	}
	if p.opts.ParquetDir != "" {
		opts = append(opts, extract.WithParquetDir(p.opts.ParquetDir))
	}

	return extract.WriteExtract(ctx, p.opts.ExportPath, p.opts.ExportMode, extract.FromSummaries(s), opts...)
}

func (p *Pipeline) finishMetrics(ctx context.Context, ok bool) {
	if p.opts.Metrics == nil {
		return
	}
	if ok {
		p.opts.Metrics.MarkSuccess(time.Now())
	} else {
		p.opts.Metrics.MarkFailure()
	}

	if p.opts.MetricsFile == "" {
		return
	}
	if err := p.opts.Metrics.WriteFile(p.opts.MetricsFile); err != nil {
		logging.Ctx(ctx, "pipeline").Warn().Err(err).Msg("Failed to write metrics")
	}
}
