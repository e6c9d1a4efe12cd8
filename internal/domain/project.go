package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// MonthlyAverageRow is one (year, month) row of the matrix; Values[i] belongs to
// the matrix's Cities[i].
type MonthlyAverageRow struct {
	Year   int       `json:"year"`
	Month  int       `json:"month"`
	Values []Reading `json:"values"`
}

// MonthlyAverageMatrix is the wide monthly view: one row per (year, month) sorted
// ascending, one column per city in order of first occurrence.
type MonthlyAverageMatrix struct {
	Cities []string            `json:"cities"`
	Rows   []MonthlyAverageRow `json:"rows"`
}

type yearMonth struct {
	year  int
	month int
}

// ProjectMonthly pivots monthly means into a MonthlyAverageMatrix. Keys must be
// unique; a duplicate (year, month, city) is reported, never merged.
func ProjectMonthly(means []MonthlyMean) (MonthlyAverageMatrix, error) {
	cityIdx := make(map[string]int)
	cities := []string{}
	for _, m := range means {
		if _, ok := cityIdx[m.City]; !ok {
			cityIdx[m.City] = len(cities)
			cities = append(cities, m.City)
		}
	}

	rowIdx := make(map[yearMonth]int)
	rows := []MonthlyAverageRow{}
	filled := make(map[monthlyKey]bool, len(means))
	for _, m := range means {
		k := monthlyKey{year: m.Year, month: m.Month, city: m.City}
		if filled[k] {
			return MonthlyAverageMatrix{}, fmt.Errorf("project monthly: (%d, %d, %q): %w", m.Year, int(m.Month), m.City, ErrDuplicateKey)
		}
		filled[k] = true

		ym := yearMonth{year: m.Year, month: int(m.Month)}
		i, ok := rowIdx[ym]
		if !ok {
			i = len(rows)
			rowIdx[ym] = i
			rows = append(rows, MonthlyAverageRow{Year: ym.year, Month: ym.month, Values: make([]Reading, len(cities))})
		}
		rows[i].Values[cityIdx[m.City]] = m.Mean
	}

	slices.SortFunc(rows, func(a, b MonthlyAverageRow) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month))
	})
	return MonthlyAverageMatrix{Cities: cities, Rows: rows}, nil
}

// Value returns the mean for a city in a month, false when the cell is absent or missing.
func (m MonthlyAverageMatrix) Value(year, month int, city string) (float64, bool) {
	c := slices.Index(m.Cities, city)
	if c < 0 {
		return 0, false
	}
	for _, row := range m.Rows {
		if row.Year == year && row.Month == month {
			r := row.Values[c]
			return r.Value, r.Valid
		}
	}
	return 0, false
}

// Select narrows the matrix to the given years and cities, keeping the requested
// city order. Empty arguments keep everything; unknown cities are skipped.
func (m MonthlyAverageMatrix) Select(years []int, cities []string) MonthlyAverageMatrix {
	cols := make([]int, 0, len(m.Cities))
	out := MonthlyAverageMatrix{Cities: []string{}, Rows: []MonthlyAverageRow{}}
	if len(cities) == 0 {
		cities = m.Cities
	}
	for _, city := range cities {
		if c := slices.Index(m.Cities, city); c >= 0 {
			cols = append(cols, c)
			out.Cities = append(out.Cities, city)
		}
	}

	for _, row := range m.Rows {
		if len(years) > 0 && !slices.Contains(years, row.Year) {
			continue
		}
		values := make([]Reading, len(cols))
		for i, c := range cols {
			values[i] = row.Values[c]
		}
		out.Rows = append(out.Rows, MonthlyAverageRow{Year: row.Year, Month: row.Month, Values: values})
	}
	return out
}
