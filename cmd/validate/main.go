// Command validate checks PM2.5 workbooks before they are fed to the pipeline.
// For every table it verifies that each station column resolves to a
// (city, station) pair, that enough timestamps parse, and that the analysis
// outputs hold their structural guarantees.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -files 'data/*_PM25_1g.xlsx' \
//	  -drop Rok \
//	  -min-coverage 0.95
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/xlsx"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	reader      xlsx.ReaderOptions
	analysis    domain.Options
	minCoverage float64
}

func main() {
	files := flag.String("files", "", "comma-separated workbook paths or glob patterns")
	sheet := flag.String("sheet", "", "sheet name (default: first sheet)")
	headerRow := flag.Int("header-row", 0, "zero-based header row")
	labelRow := flag.Int("label-row", -1, "zero-based compound label row, -1 for none")
	drop := flag.String("drop", "Rok", "comma-separated column headers to drop")
	firstDataRow := flag.Int("first-data-row", 0, "data rows to skip before analysis")
	threshold := flag.Float64("threshold", domain.DefaultThreshold, "daily mean threshold")
	minCoverage := flag.Float64("min-coverage", 0.9, "minimum fraction of rows with a parseable timestamp")
	flag.Parse()

	if *files == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := options{
		reader: xlsx.ReaderOptions{
			Paths:       splitList(*files),
			Sheet:       *sheet,
			HeaderRow:   *headerRow,
			LabelRow:    *labelRow,
			DropColumns: splitList(*drop),
		},
		analysis:    domain.Options{Threshold: *threshold, FirstDataRow: *firstDataRow},
		minCoverage: *minCoverage,
	}
	os.Exit(run(opts))
}

func run(opts options) int {
	fmt.Println("=== PM2.5 Workbook Validation ===")
	fmt.Println()

	paths, err := xlsx.NewReader(opts.reader, nil).Files()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	allPassed := true
	for _, path := range paths {
		table, err := xlsx.ReadTable(path, opts.reader)
		if err != nil {
			fmt.Printf("%s\n  \033[31mFAIL\033[0m read: %v\n\n", path, err)
			allPassed = false
			continue
		}
		if !report(path, validateTable(table, opts)) {
			allPassed = false
		}
	}

	if allPassed {
		fmt.Println("All validations passed.")
		return 0
	}
	fmt.Println("Validation FAILED.")
	return 1
}

func report(path string, phases []*phase) bool {
	fmt.Println(path)
	ok := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			ok = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}
	for _, p := range phases {
		for i, e := range p.errors {
			fmt.Printf("    %s [%d] %s\n", p.name, i+1, e)
		}
	}
	fmt.Println()
	return ok
}

func validateTable(table domain.RawTable, opts options) []*phase {
	stations := validateStations(table)
	if !stations.passed() {
		return []*phase{stations}
	}

	analysis, err := domain.Analyze(table, opts.analysis)
	if err != nil {
		p := &phase{name: "Analysis"}
		p.errorf("%v", err)
		return []*phase{stations, p}
	}
	return []*phase{
		stations,
		validateCoverage(analysis.Stats, opts.minCoverage),
		validateMonthly(analysis.Monthly),
		validateExceedances(analysis.Exceedances),
	}
}

// ── Phase 1: Station resolution ──

func validateStations(table domain.RawTable) *phase {
	p := &phase{name: "Station resolution"}
	if len(table.Columns) == 0 {
		p.errorf("no station columns")
		return p
	}
	mapping, scheme, err := domain.ResolveStations(table.Columns)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	fmt.Printf("  scheme=%s stations=%d cities=%d\n", scheme, len(mapping), len(mapping.Cities(table.Columns)))
	return p
}

// ── Phase 2: Timestamp coverage ──

func validateCoverage(stats domain.Stats, minCoverage float64) *phase {
	p := &phase{name: "Timestamp coverage"}
	rows := stats.Reshape.Rows
	if rows == 0 {
		p.errorf("no data rows")
		return p
	}
	parsed := 0
	for _, n := range stats.Timestamps.ByLayout {
		parsed += n
	}
	if parsed+stats.Timestamps.Unparsed != rows {
		p.errorf("%d parsed + %d unparsed timestamps for %d rows", parsed, stats.Timestamps.Unparsed, rows)
	}
	if coverage := float64(parsed) / float64(rows); coverage < minCoverage {
		p.errorf("only %.1f%% of %d rows have a parseable timestamp (minimum %.1f%%)",
			100*coverage, rows, 100*minCoverage)
	}
	return p
}

// ── Phase 3: Monthly matrix ──

func validateMonthly(m domain.MonthlyAverageMatrix) *phase {
	p := &phase{name: "Monthly matrix"}
	for i, row := range m.Rows {
		if len(row.Values) != len(m.Cities) {
			p.errorf("%04d-%02d: %d values for %d cities", row.Year, row.Month, len(row.Values), len(m.Cities))
		}
		if row.Month < 1 || row.Month > 12 {
			p.errorf("%04d-%02d: month out of range", row.Year, row.Month)
		}
		if i > 0 {
			prev := m.Rows[i-1]
			if row.Year < prev.Year || (row.Year == prev.Year && row.Month <= prev.Month) {
				p.errorf("%04d-%02d: rows not strictly ascending", row.Year, row.Month)
			}
		}
	}
	return p
}

// ── Phase 4: Exceedance summary ──

func validateExceedances(s domain.ExceedanceSummary) *phase {
	p := &phase{name: "Exceedance summary"}
	for _, e := range s {
		days := time.Date(e.Year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
		if e.DaysExceeded < 0 || e.DaysExceeded > e.ValidDays || e.ValidDays > days {
			p.errorf("%d %s/%s: %d exceedance days, %d valid days, %d days in year",
				e.Year, e.City, e.Station, e.DaysExceeded, e.ValidDays, days)
		}
	}
	return p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
