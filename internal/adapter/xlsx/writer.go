package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Writer saves each report as a summary workbook in a directory.
// It implements pipeline.ReportSink.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer that stores workbooks under dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

func (w *Writer) Name() string { return "xlsx" }

// SummaryPath returns the workbook path used for a report source.
func (w *Writer) SummaryPath(source string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(w.dir, stem+"_summary.xlsx")
}

// LoadReport writes the report's monthly matrix, exceedance summary, station
// mapping, and run metadata into one workbook, replacing any previous one.
func (w *Writer) LoadReport(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	x := excelize.NewFile()
	defer x.Close() //nolint:errcheck // in-memory workbook

	sheets := []struct {
		name string
		rows [][]any
	}{
		{"monthly", monthlyRows(report.Monthly)},
		{"exceedances", exceedanceRows(report.Exceedances)},
		{"stations", stationRows(report.Stations)},
		{"info", infoRows(report)},
	}
	for i, s := range sheets {
		idx, err := x.NewSheet(s.name)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
		if err := setRows(x, s.name, s.rows); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
		if i == 0 {
			x.SetActiveSheet(idx)
		}
	}
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	path := w.SummaryPath(report.Source)
	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	w.logger.Info("summary workbook written", "path", path, "source", report.Source)
	return nil
}

func setRows(x *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cellName, &row); err != nil {
			return err
		}
	}
	return nil
}

func monthlyRows(m domain.MonthlyAverageMatrix) [][]any {
	header := []any{"year", "month"}
	for _, c := range m.Cities {
		header = append(header, c)
	}
	rows := [][]any{header}
	for _, r := range m.Rows {
		row := []any{r.Year, r.Month}
		for _, v := range r.Values {
			if v.Valid {
				row = append(row, v.Value)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func exceedanceRows(s domain.ExceedanceSummary) [][]any {
	rows := [][]any{{"year", "city", "station", "days_exceeded", "valid_days"}}
	for _, e := range s {
		rows = append(rows, []any{e.Year, e.City, e.Station, e.DaysExceeded, e.ValidDays})
	}
	return rows
}

func stationRows(m domain.StationMapping) [][]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := [][]any{{"column", "city", "station"}}
	for _, k := range keys {
		rows = append(rows, []any{k, m[k].City, m[k].Code})
	}
	return rows
}

func infoRows(r domain.Report) [][]any {
	return [][]any{
		{"run_id", r.RunID},
		{"source", r.Source},
		{"threshold", strconv.FormatFloat(r.Threshold, 'f', -1, 64)},
		{"generated_at", r.GeneratedAt.Format(time.RFC3339)},
		{"scheme", string(r.Stats.Scheme)},
		{"rows", r.Stats.Reshape.Rows},
		{"dropped_rows", r.Stats.Reshape.DroppedRows},
		{"missing_readings", r.Stats.Reshape.MissingReadings},
	}
}
