package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/jonboulle/clockwork"
)

// TableAnalyzer implements Analyzer with the domain analysis functions.
type TableAnalyzer struct {
	opts   domain.Options
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewAnalyzer creates a TableAnalyzer. Pass a nil clock to use real time.
func NewAnalyzer(opts domain.Options, clock clockwork.Clock, logger *slog.Logger) *TableAnalyzer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TableAnalyzer{opts: opts, clock: clock, logger: logger}
}

func (a *TableAnalyzer) Analyze(ctx context.Context, src SourceTable) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	analysis, err := domain.Analyze(src.Table, a.opts)
	if err != nil {
		return domain.Report{}, fmt.Errorf("analyze %s: %w", src.Name, err)
	}

	ts := analysis.Stats.Timestamps
	if ts.Unparsed > 0 {
		a.logger.Debug("rows without a parseable timestamp dropped",
			"source", src.Name,
			"rows", ts.Unparsed,
		)
	}
	a.logger.Info("table analyzed",
		"source", src.Name,
		"scheme", analysis.Stats.Scheme,
		"stations", analysis.Stats.Stations,
		"cities", analysis.Stats.Cities,
		"months", len(analysis.Monthly.Rows),
		"missing_readings", analysis.Stats.Reshape.MissingReadings,
	)

	return domain.Report{
		Source:      src.Name,
		Threshold:   a.opts.Threshold,
		GeneratedAt: a.clock.Now().UTC(),
		Analysis:    analysis,
	}, nil
}
