package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// stationLabelRe extracts (city, code) from a compound label,
	// e.g. "('Warszawa', 'MzWarAlNiepo')" -> Warszawa, MzWarAlNiepo.
	stationLabelRe = regexp.MustCompile(`\(\s*'([^']+)'\s*,\s*'([^']+)'\s*\)`)

	// suffixedHeaderRe splits a header such as "Warszawa.1" into the city name and
	// the optional duplicate-station suffix.
	suffixedHeaderRe = regexp.MustCompile(`^(\p{L}[^()'"]*?)(?:\.(\d+))?$`)
)

// Scheme identifies how a source encodes station identity.
type Scheme string

const (
	// SchemeEmbeddedTuple: every column carries a "('<city>', '<code>')" label.
	SchemeEmbeddedTuple Scheme = "embedded_tuple"
	// SchemeSuffixedColumn: the header is the city name, with ".1", ".2", ...
	// appended for further stations in the same city.
	SchemeSuffixedColumn Scheme = "suffixed_column"
)

// Station is the canonical identity of a station column.
type Station struct {
	City string `json:"city"`
	Code string `json:"code"`
}

// StationResolver recovers a Station from one column under a single scheme.
type StationResolver interface {
	Scheme() Scheme
	Resolve(col StationColumn) (Station, error)
}

// StationMapping maps each column header to its station. Built once per table and
// treated as ground truth by the reshape step.
type StationMapping map[string]Station

// Cities returns the distinct cities of columns in column order.
func (m StationMapping) Cities(columns []StationColumn) []string {
	seen := make(map[string]bool, len(m))
	var cities []string
	for _, col := range columns {
		st, ok := m[col.Header]
		if !ok || seen[st.City] {
			continue
		}
		seen[st.City] = true
		cities = append(cities, st.City)
	}
	return cities
}

type tupleLabelResolver struct{}

func (tupleLabelResolver) Scheme() Scheme { return SchemeEmbeddedTuple }

func (tupleLabelResolver) Resolve(col StationColumn) (Station, error) {
	m := stationLabelRe.FindStringSubmatch(col.Label)
	if len(m) != 3 {
		return Station{}, fmt.Errorf("column %q label %q: %w", col.Header, col.Label, ErrUnresolvedStation)
	}
	return Station{City: m[1], Code: m[2]}, nil
}

type suffixedHeaderResolver struct{}

func (suffixedHeaderResolver) Scheme() Scheme { return SchemeSuffixedColumn }

func (suffixedHeaderResolver) Resolve(col StationColumn) (Station, error) {
	header := strings.TrimSpace(col.Header)
	m := suffixedHeaderRe.FindStringSubmatch(header)
	if len(m) != 3 || strings.TrimSpace(m[1]) == "" {
		return Station{}, fmt.Errorf("column %q: %w", col.Header, ErrUnresolvedStation)
	}
	return Station{City: strings.TrimSpace(m[1]), Code: col.Header}, nil
}

// FormatStationLabel renders the compound label used by the embedded-tuple scheme.
func FormatStationLabel(city, code string) string {
	return fmt.Sprintf("('%s', '%s')", city, code)
}

// SelectResolver picks the scheme for a whole table: the embedded-tuple scheme as
// soon as any column carries a label, the suffixed-column scheme otherwise.
func SelectResolver(columns []StationColumn) StationResolver {
	for _, col := range columns {
		if col.Label != "" {
			return tupleLabelResolver{}
		}
	}
	return suffixedHeaderResolver{}
}

// ResolveStations builds the mapping for every column of the table. Any column that
// does not resolve fails the whole call; no station is ever dropped or guessed.
func ResolveStations(columns []StationColumn) (StationMapping, Scheme, error) {
	resolver := SelectResolver(columns)
	mapping := make(StationMapping, len(columns))
	for _, col := range columns {
		if _, dup := mapping[col.Header]; dup {
			return nil, resolver.Scheme(), fmt.Errorf("column %q: %w", col.Header, ErrDuplicateColumn)
		}
		st, err := resolver.Resolve(col)
		if err != nil {
			return nil, resolver.Scheme(), fmt.Errorf("resolve stations (%s): %w", resolver.Scheme(), err)
		}
		mapping[col.Header] = st
	}
	return mapping, resolver.Scheme(), nil
}
