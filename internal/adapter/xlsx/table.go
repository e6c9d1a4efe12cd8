package xlsx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/xuri/excelize/v2"
)

// TimestampHeader is the header of the timestamp column in GIOŚ workbooks.
const TimestampHeader = "Kod stacji"

// WriteTable saves a RawTable as a sheet in the layout ReadTable expects: one
// header row, a label row when any column carries a label, then the data rows.
// Values that parse as numbers are stored as numeric cells.
func WriteTable(path, sheet string, t domain.RawTable) error {
	x := excelize.NewFile()
	defer x.Close() //nolint:errcheck // in-memory workbook

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := x.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	header := []any{TimestampHeader}
	labels := []any{""}
	hasLabels := false
	for _, c := range t.Columns {
		header = append(header, c.Header)
		labels = append(labels, c.Label)
		hasLabels = hasLabels || c.Label != ""
	}
	rows := [][]any{header}
	if hasLabels {
		rows = append(rows, labels)
	}
	for _, r := range t.Rows {
		row := []any{r.Timestamp}
		for _, v := range r.Values {
			row = append(row, cellValue(v))
		}
		rows = append(rows, row)
	}

	if err := setRows(x, sheet, rows); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	return x.SaveAs(path)
}

func cellValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return s
}
