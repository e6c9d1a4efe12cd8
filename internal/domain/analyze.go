package domain

import (
	"fmt"
	"math"
)

// DefaultThreshold is the WHO 24-hour PM2.5 guideline in µg/m³.
const DefaultThreshold = 15.0

// Options are the per-call parameters of an analysis.
type Options struct {
	// Threshold is compared against daily means with a strict ">".
	Threshold float64
	// FirstDataRow skips leading metadata rows some sources put above the observations.
	FirstDataRow int
}

// DefaultOptions returns the WHO threshold and no row offset.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

func (o Options) validate() error {
	if math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return fmt.Errorf("options: threshold %v: %w", o.Threshold, ErrInvalidThreshold)
	}
	if o.FirstDataRow < 0 {
		return fmt.Errorf("options: first data row %d: %w", o.FirstDataRow, ErrInvalidOffset)
	}
	return nil
}

// Stats describes what one analysis kept and discarded.
type Stats struct {
	Scheme     Scheme         `json:"scheme"`
	Stations   int            `json:"stations"`
	Cities     int            `json:"cities"`
	Timestamps TimestampStats `json:"timestamps"`
	Reshape    ReshapeStats   `json:"reshape"`
}

// Analysis bundles both outputs of one table.
type Analysis struct {
	Stations    StationMapping       `json:"stations"`
	Monthly     MonthlyAverageMatrix `json:"monthly"`
	Exceedances ExceedanceSummary    `json:"exceedances"`
	Stats       Stats                `json:"stats"`
}

// prepared is the private working state shared by both paths of one call.
type prepared struct {
	table   RawTable
	stamps  []Timestamp
	mapping StationMapping
	stats   Stats
}

func prepare(table RawTable, opts Options) (prepared, error) {
	if err := opts.validate(); err != nil {
		return prepared{}, err
	}

	work := table.Clone()
	if opts.FirstDataRow >= len(work.Rows) {
		work.Rows = work.Rows[:0]
	} else {
		work.Rows = work.Rows[opts.FirstDataRow:]
	}

	mapping, scheme, err := ResolveStations(work.Columns)
	if err != nil {
		return prepared{}, err
	}

	stamps, tsStats := DefaultTimestampNormalizer().Normalize(work.Timestamps())

	return prepared{
		table:   work,
		stamps:  stamps,
		mapping: mapping,
		stats: Stats{
			Scheme:     scheme,
			Stations:   len(mapping),
			Cities:     len(mapping.Cities(work.Columns)),
			Timestamps: tsStats,
		},
	}, nil
}

func (p prepared) monthly() (MonthlyAverageMatrix, ReshapeStats, error) {
	records, rs, err := ReshapeMonthly(p.table.Rows, p.stamps, p.table.Columns, p.mapping)
	if err != nil {
		return MonthlyAverageMatrix{}, ReshapeStats{}, err
	}
	matrix, err := ProjectMonthly(MonthlyMeans(records))
	if err != nil {
		return MonthlyAverageMatrix{}, ReshapeStats{}, err
	}
	return matrix, rs, nil
}

func (p prepared) exceedances(threshold float64) (ExceedanceSummary, ReshapeStats, error) {
	records, rs, err := ReshapeDaily(p.table.Rows, p.stamps, p.table.Columns, p.mapping)
	if err != nil {
		return nil, ReshapeStats{}, err
	}
	summary, err := CountExceedances(records, threshold)
	if err != nil {
		return nil, ReshapeStats{}, err
	}
	return summary, rs, nil
}

// MonthlyAverage computes the monthly mean concentration per city. The caller's
// table is not modified.
func MonthlyAverage(table RawTable, opts Options) (MonthlyAverageMatrix, error) {
	p, err := prepare(table, opts)
	if err != nil {
		return MonthlyAverageMatrix{}, err
	}
	m, _, err := p.monthly()
	return m, err
}

// CountDaysOverThreshold counts, per station and year, the days whose mean reading
// is strictly above opts.Threshold. The caller's table is not modified.
func CountDaysOverThreshold(table RawTable, opts Options) (ExceedanceSummary, error) {
	p, err := prepare(table, opts)
	if err != nil {
		return nil, err
	}
	s, _, err := p.exceedances(opts.Threshold)
	return s, err
}

// Analyze runs both paths over one working copy of table.
func Analyze(table RawTable, opts Options) (Analysis, error) {
	p, err := prepare(table, opts)
	if err != nil {
		return Analysis{}, err
	}
	monthly, rs, err := p.monthly()
	if err != nil {
		return Analysis{}, err
	}
	summary, _, err := p.exceedances(opts.Threshold)
	if err != nil {
		return Analysis{}, err
	}

	p.stats.Reshape = rs
	return Analysis{
		Stations:    p.mapping,
		Monthly:     monthly,
		Exceedances: summary,
		Stats:       p.stats,
	}, nil
}
