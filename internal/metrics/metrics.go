// Package metrics records pipeline run statistics and writes them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shotprofile"

// Recorder holds the metrics of one process. All methods are safe for
// concurrent use.
type Recorder struct {
	reg *prometheus.Registry

	tableRows     *prometheus.GaugeVec
	stageDuration *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	profileRows   prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extract_rows",
			Help:      "Rows written to each extract table by the last run.",
		}, []string{"table"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run.",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		profileRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_zones",
			Help:      "Zones in the best-shot profile of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	r.reg.MustRegister(r.tableRows, r.stageDuration, r.runs, r.profileRows, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// SetTableRows records the number of rows written to table.
func (r *Recorder) SetTableRows(table string, n int) {
	r.tableRows.WithLabelValues(table).Set(float64(n))
}

// SetProfileRows records the size of the best-shot profile.
func (r *Recorder) SetProfileRows(n int) {
	r.profileRows.Set(float64(n))
}

// MarkSuccess counts a successful run finished at t.
func (r *Recorder) MarkSuccess(t time.Time) {
	r.runs.WithLabelValues("success").Inc()
	r.lastSuccess.Set(float64(t.Unix()))
}

// MarkFailure counts a failed run.
func (r *Recorder) MarkFailure() {
	r.runs.WithLabelValues("failure").Inc()
}

// WriteFile writes all metrics to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
