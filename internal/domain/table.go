package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StationColumn describes one station column of a wide measurement table.
type StationColumn struct {
	Header string `json:"header"`
	// Label is the compound "('<city>', '<code>')" text carried by sources using the
	// embedded-tuple scheme. Empty for suffixed-column sources.
	Label string `json:"label,omitempty"`
}

// RawRow is one observation row: a timestamp-like value and one cell per station column.
type RawRow struct {
	Key       string   `json:"key"`
	Timestamp string   `json:"timestamp"`
	Values    []string `json:"values"` // Values[i] belongs to Columns[i]; "" is missing
}

// RawTable is a wide measurement table as handed over by a loader. It is owned by
// the caller; the analysis functions work on a Clone.
type RawTable struct {
	Columns []StationColumn `json:"columns"`
	Rows    []RawRow        `json:"rows"`
}

// Clone returns a deep copy sharing no slices with t.
func (t RawTable) Clone() RawTable {
	out := RawTable{
		Columns: make([]StationColumn, len(t.Columns)),
		Rows:    make([]RawRow, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		values := make([]string, len(row.Values))
		copy(values, row.Values)
		out.Rows[i] = RawRow{Key: row.Key, Timestamp: row.Timestamp, Values: values}
	}
	return out
}

// Timestamps returns the timestamp column as a new slice.
func (t RawTable) Timestamps() []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Timestamp
	}
	return out
}

// Reading is a concentration value that may be missing.
type Reading struct {
	Value float64
	Valid bool
}

// ValidReading wraps a present value.
func ValidReading(v float64) Reading { return Reading{Value: v, Valid: true} }

// ParseReading coerces a raw cell to a Reading. Empty cells, text, NaN and
// infinities are missing; nothing is ever coerced to zero.
func ParseReading(s string) Reading {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reading{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return ValidReading(v)
}

// MarshalJSON renders a missing reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ValidReading(v)
	return nil
}
