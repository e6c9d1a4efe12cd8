package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// SourceTable is one raw table and the name of the source it came from.
type SourceTable struct {
	Name  string
	Table domain.RawTable
}

// TableSource reads all raw tables for one run.
type TableSource interface {
	Extract(ctx context.Context) ([]SourceTable, error)
}

// Analyzer converts a raw table into a report.
type Analyzer interface {
	Analyze(ctx context.Context, src SourceTable) (domain.Report, error)
}

// ReportSink writes a report to one destination.
type ReportSink interface {
	Name() string
	LoadReport(ctx context.Context, report domain.Report) error
}

// Options tune a Pipeline. Zero values fall back to defaults.
type Options struct {
	// LoadAttempts is the number of tries per report and sink.
	LoadAttempts int
	// Concurrency bounds how many tables are analyzed at once.
	Concurrency int
	Clock       clockwork.Clock
}

// Pipeline orchestrates the extract-analyze-load run.
type Pipeline struct {
	source   TableSource
	analyzer Analyzer
	sinks    []ReportSink
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	opts     Options
}

// New creates a Pipeline with the given stages and observability.
func New(src TableSource, a Analyzer, sinks []ReportSink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.LoadAttempts <= 0 {
		opts.LoadAttempts = 3
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:   src,
		analyzer: a,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
	}
}

// CheckReadiness returns nil once a run has loaded at least one report.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any reports yet")
	}
	return nil
}

// RunOnce extracts every source table, analyzes the tables concurrently and loads
// each report into every sink. A table with a structural error does not stop the
// others; all failures are joined into the returned error.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := p.opts.Clock.Now()
	runID := uuid.NewString()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	logger := p.logger.With("run_id", runID)

	tables, err := p.source.Extract(ctx)
	if err != nil {
		p.metrics.ExtractErrors.Inc()
		logger.Error("extract failed", "error", err)
		return fmt.Errorf("extract: %w", err)
	}
	logger.Info("run started", "tables", len(tables), "sinks", len(p.sinks))

	reports, errs := p.analyzeAll(ctx, logger, tables)

	loaded := 0
	for _, report := range reports {
		report.RunID = runID
		p.recordAnalysis(report)
		for _, sink := range p.sinks {
			if err := p.loadWithRetry(ctx, logger, sink, report); err != nil {
				errs = append(errs, fmt.Errorf("load %s into %s: %w", report.Source, sink.Name(), err))
				continue
			}
			loaded++
		}
	}

	p.metrics.RunDuration.Observe(p.opts.Clock.Since(start).Seconds())
	if loaded > 0 || (len(p.sinks) == 0 && len(reports) > 0) {
		p.ready.Store(true)
	}
	if len(errs) > 0 {
		logger.Warn("run finished with errors", "errors", len(errs), "reports", len(reports))
		return errors.Join(errs...)
	}

	p.metrics.LastSuccess.Set(float64(p.opts.Clock.Now().Unix()))
	logger.Info("run finished", "reports", len(reports), "loaded", loaded,
		"duration", p.opts.Clock.Since(start))
	return nil
}

// analyzeAll runs the analyzer over every table with bounded concurrency. Reports
// keep the order of tables; failed tables are left out.
func (p *Pipeline) analyzeAll(ctx context.Context, logger *slog.Logger, tables []SourceTable) ([]domain.Report, []error) {
	results := make([]*domain.Report, len(tables))
	failures := make([]error, len(tables))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, src := range tables {
		g.Go(func() error {
			report, err := p.analyzer.Analyze(ctx, src)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = &report
			return nil
		})
	}
	_ = g.Wait()

	var reports []domain.Report
	var errs []error
	for i, src := range tables {
		if failures[i] != nil {
			p.metrics.TableFailures.Inc()
			logger.Error("table rejected", "source", src.Name, "error", failures[i])
			errs = append(errs, failures[i])
			continue
		}
		reports = append(reports, *results[i])
	}
	return reports, errs
}

func (p *Pipeline) recordAnalysis(report domain.Report) {
	s := report.Stats
	p.metrics.TablesProcessed.WithLabelValues(string(s.Scheme)).Inc()
	p.metrics.RowsRead.Add(float64(s.Reshape.Rows))
	p.metrics.RowsDropped.Add(float64(s.Reshape.DroppedRows))
	p.metrics.MissingReadings.Add(float64(s.Reshape.MissingReadings))
	for layout, n := range s.Timestamps.ByLayout {
		p.metrics.TimestampLayouts.WithLabelValues(layout).Add(float64(n))
	}
}

// loadWithRetry writes one report into one sink, backing off between attempts.
func (p *Pipeline) loadWithRetry(ctx context.Context, logger *slog.Logger, sink ReportSink, report domain.Report) error {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= p.opts.LoadAttempts; attempt++ {
		if err = sink.LoadReport(ctx, report); err == nil {
			p.metrics.ReportsLoaded.WithLabelValues(sink.Name()).Inc()
			return nil
		}
		logger.Warn("load report failed",
			"sink", sink.Name(),
			"source", report.Source,
			"attempt", attempt,
			"error", err,
		)
		if attempt == p.opts.LoadAttempts || !p.sleep(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	p.metrics.LoadErrors.WithLabelValues(sink.Name()).Inc()
	if ctx.Err() != nil {
		return errors.Join(err, ctx.Err())
	}
	return err
}

// sleep is retry.SleepWithContext on the pipeline clock.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.opts.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
