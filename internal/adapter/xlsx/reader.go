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
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

// ReaderOptions describes where the station table sits inside a workbook.
type ReaderOptions struct {
	Paths       []string // file paths or glob patterns
	Sheet       string   // empty selects the first sheet
	HeaderRow   int      // zero-based row holding the column headers
	LabelRow    int      // zero-based row holding compound station labels, -1 for none
	DropColumns []string // headers removed before analysis
	CacheSize   int      // parsed workbooks kept between runs, 0 disables caching
}

// Reader loads raw measurement tables from GIOŚ-style workbooks.
// It implements pipeline.TableSource.
type Reader struct {
	opts   ReaderOptions
	cache  *tableCache
	logger *slog.Logger
}

// NewReader creates a Reader for the given workbooks.
func NewReader(opts ReaderOptions, logger *slog.Logger) *Reader {
	r := &Reader{opts: opts, logger: logger}
	if opts.CacheSize > 0 {
		r.cache = newTableCache(opts.CacheSize)
	}
	return r
}

// Files expands the configured paths and globs into a sorted, de-duplicated list.
// A pattern that matches nothing is an error.
func (r *Reader) Files() ([]string, error) {
	var files []string
	for _, p := range r.opts.Paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("input pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matches no files", p)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Extract reads every configured workbook.
func (r *Reader) Extract(ctx context.Context) ([]pipeline.SourceTable, error) {
	files, err := r.Files()
	if err != nil {
		return nil, err
	}

	tables := make([]pipeline.SourceTable, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := r.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		tables = append(tables, pipeline.SourceTable{Name: filepath.Base(path), Table: table})
	}
	return tables, nil
}

func (r *Reader) readFile(path string) (domain.RawTable, error) {
	if r.cache == nil {
		return r.parse(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	stamp := stampOf(info)
	if table, ok := r.cache.get(path, stamp); ok {
		r.logger.Debug("workbook unchanged, using cached table", "path", path)
		return table, nil
	}

	table, err := r.parse(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	r.cache.put(path, stamp, table)
	return table, nil
}

func (r *Reader) parse(path string) (domain.RawTable, error) {
	table, err := ReadTable(path, r.opts)
	if err != nil {
		return domain.RawTable{}, err
	}
	r.logger.Debug("workbook read",
		"path", path,
		"columns", len(table.Columns),
		"rows", len(table.Rows),
	)
	return table, nil
}

// ReadTable opens one workbook and converts its station sheet into a RawTable.
// Column 0 is the timestamp column; every other column not listed in
// DropColumns is a station column.
func ReadTable(path string, opts ReaderOptions) (domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close() //nolint:errcheck // read-only

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	return buildTable(rows, opts, date1904)
}

func buildTable(rows [][]string, opts ReaderOptions, date1904 bool) (domain.RawTable, error) {
	if opts.HeaderRow < 0 || opts.HeaderRow >= len(rows) {
		return domain.RawTable{}, fmt.Errorf("header row %d outside sheet of %d rows", opts.HeaderRow, len(rows))
	}
	if opts.LabelRow >= len(rows) {
		return domain.RawTable{}, fmt.Errorf("label row %d outside sheet of %d rows", opts.LabelRow, len(rows))
	}

	header := rows[opts.HeaderRow]
	var labels []string
	if opts.LabelRow >= 0 {
		labels = rows[opts.LabelRow]
	}

	var keep []int
	table := domain.RawTable{Columns: []domain.StationColumn{}, Rows: []domain.RawRow{}}
	for j := 1; j < len(header); j++ {
		name := strings.TrimSpace(header[j])
		if slices.Contains(opts.DropColumns, name) {
			continue
		}
		keep = append(keep, j)
		table.Columns = append(table.Columns, domain.StationColumn{
			Header: name,
			Label:  strings.TrimSpace(cell(labels, j)),
		})
	}

	first := max(opts.HeaderRow, opts.LabelRow) + 1
	for i := first; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		values := make([]string, len(keep))
		for k, j := range keep {
			values[k] = cell(row, j)
		}
		table.Rows = append(table.Rows, domain.RawRow{
			Key:       strconv.Itoa(i + 1),
			Timestamp: timestampCell(cell(row, 0), date1904),
			Values:    values,
		})
	}
	return table, nil
}

func cell(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}

// timestampCell renders date cells stored as Excel serial numbers in the textual
// encodings the normalizer understands. Text cells pass through unchanged.
func timestampCell(s string, date1904 bool) string {
	s = strings.TrimSpace(s)
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return s
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return s
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format(time.DateTime)
}
