package domain

import (
	"fmt"
	"time"
)

// MonthlyRecord is the long-form observation used by the monthly path. Station
// identity is irrelevant there and not carried.
type MonthlyRecord struct {
	Year  int
	Month time.Month
	City  string
	Value Reading
}

// DailyRecord is the long-form observation used by the exceedance path.
type DailyRecord struct {
	Year    int
	Date    Date
	City    string
	Station string
	Value   Reading
}

// ReshapeStats accounts for what the reshape kept and skipped.
type ReshapeStats struct {
	Rows            int `json:"rows"`
	DroppedRows     int `json:"dropped_rows"` // unparsed timestamp
	Records         int `json:"records"`
	MissingReadings int `json:"missing_readings"`
}

// wideCells walks the table column by column (the order a wide-to-long melt
// produces) and calls emit for every cell of a row with a parsed timestamp.
func wideCells(rows []RawRow, stamps []Timestamp, columns []StationColumn, mapping StationMapping,
	emit func(ts Timestamp, st Station, r Reading)) (ReshapeStats, error) {
	if len(stamps) != len(rows) {
		return ReshapeStats{}, fmt.Errorf("reshape: %d timestamps for %d rows", len(stamps), len(rows))
	}

	stats := ReshapeStats{Rows: len(rows)}
	for _, ts := range stamps {
		if !ts.OK {
			stats.DroppedRows++
		}
	}

	for c, col := range columns {
		st, ok := mapping[col.Header]
		if !ok {
			return ReshapeStats{}, fmt.Errorf("reshape: column %q: %w", col.Header, ErrUnresolvedStation)
		}
		for i, row := range rows {
			if !stamps[i].OK {
				continue
			}
			var cell string
			if c < len(row.Values) {
				cell = row.Values[c]
			}
			r := ParseReading(cell)
			if !r.Valid {
				stats.MissingReadings++
			}
			stats.Records++
			emit(stamps[i], st, r)
		}
	}
	return stats, nil
}

// ReshapeMonthly converts the wide table into (year, month, city, value) records.
func ReshapeMonthly(rows []RawRow, stamps []Timestamp, columns []StationColumn, mapping StationMapping) ([]MonthlyRecord, ReshapeStats, error) {
	out := make([]MonthlyRecord, 0, len(rows)*len(columns))
	stats, err := wideCells(rows, stamps, columns, mapping, func(ts Timestamp, st Station, r Reading) {
		out = append(out, MonthlyRecord{Year: ts.Year(), Month: ts.Month(), City: st.City, Value: r})
	})
	if err != nil {
		return nil, ReshapeStats{}, err
	}
	return out, stats, nil
}

// ReshapeDaily converts the wide table into (year, date, city, station, value) records.
func ReshapeDaily(rows []RawRow, stamps []Timestamp, columns []StationColumn, mapping StationMapping) ([]DailyRecord, ReshapeStats, error) {
	out := make([]DailyRecord, 0, len(rows)*len(columns))
	stats, err := wideCells(rows, stamps, columns, mapping, func(ts Timestamp, st Station, r Reading) {
		out = append(out, DailyRecord{Year: ts.Year(), Date: ts.Date(), City: st.City, Station: st.Code, Value: r})
	})
	if err != nil {
		return nil, ReshapeStats{}, err
	}
	return out, stats, nil
}
