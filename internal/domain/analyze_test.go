package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// suffixedTable mimics a later GIOŚ export: two metadata rows, city headers with
// ".1" suffixes and second-precision timestamps.
func suffixedTable() RawTable {
	return RawTable{
		Columns: []StationColumn{{Header: "Warszawa"}, {Header: "Warszawa.1"}, {Header: "Kraków"}},
		Rows: []RawRow{
			{Key: "0", Timestamp: "Wskaźnik", Values: []string{"PM2.5", "PM2.5", "PM2.5"}},
			{Key: "1", Timestamp: "Jednostka", Values: []string{"ug/m3", "ug/m3", "ug/m3"}},
			{Key: "2", Timestamp: "2015-01-01 01:00:00", Values: []string{"10", "20", ""}},
			{Key: "3", Timestamp: "2015-01-01 02:00:00", Values: []string{"", "", "brak"}},
			{Key: "4", Timestamp: "2015-02-03 01:00:00", Values: []string{"40", "", "31"}},
		},
	}
}

// embeddedTable mimics an earlier export: station labels and full-precision timestamps.
func embeddedTable() RawTable {
	return RawTable{
		Columns: []StationColumn{
			{Header: "S1", Label: FormatStationLabel("Kraków", "S1")},
			{Header: "S2", Label: FormatStationLabel("Kraków", "S2")},
		},
		Rows: []RawRow{
			{Key: "0", Timestamp: "2015-01-01 01:00:00.000005", Values: []string{"10", "1"}},
			{Key: "1", Timestamp: "2015-01-02 01:00:00.000005", Values: []string{"14", "1"}},
			{Key: "2", Timestamp: "2015-01-02 13:00:00.000005", Values: []string{"18", "1"}},
			{Key: "3", Timestamp: "2015-01-03 01:00:00.000005", Values: []string{"20", ""}},
			{Key: "4", Timestamp: "corrupted", Values: []string{"500", "500"}},
		},
	}
}

func TestMonthlyAverage_WarszawaScenario(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstDataRow = 2

	m, err := MonthlyAverage(suffixedTable(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"Warszawa", "Kraków"}, m.Cities)
	require.Len(t, m.Rows, 2)

	v, ok := m.Value(2015, 1, "Warszawa")
	require.True(t, ok)
	assert.InDelta(t, 15.0, v, 1e-12)

	_, ok = m.Value(2015, 1, "Kraków")
	assert.False(t, ok, "city-month without valid readings must be missing")

	v, ok = m.Value(2015, 2, "Kraków")
	require.True(t, ok)
	assert.InDelta(t, 31.0, v, 1e-12)
}

func TestMonthlyAverage_MetadataRowsWithoutOffsetAreDropped(t *testing.T) {
	// Metadata rows carry no parseable timestamp, so they vanish even without an offset.
	m, err := MonthlyAverage(suffixedTable(), DefaultOptions())
	require.NoError(t, err)
	v, ok := m.Value(2015, 1, "Warszawa")
	require.True(t, ok)
	assert.InDelta(t, 15.0, v, 1e-12)
}

func TestCountDaysOverThreshold_KrakowScenario(t *testing.T) {
	summary, err := CountDaysOverThreshold(embeddedTable(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ExceedanceSummary{
		{Year: 2015, City: "Kraków", Station: "S1", DaysExceeded: 2, ValidDays: 3},
		{Year: 2015, City: "Kraków", Station: "S2", DaysExceeded: 0, ValidDays: 2},
	}, summary)
}

func TestAnalyze(t *testing.T) {
	a, err := Analyze(embeddedTable(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, SchemeEmbeddedTuple, a.Stats.Scheme)
	assert.Equal(t, 2, a.Stats.Stations)
	assert.Equal(t, 1, a.Stats.Cities)
	assert.Equal(t, 4, a.Stats.Timestamps.ByLayout[FullPrecision.Name])
	assert.Equal(t, 1, a.Stats.Timestamps.Unparsed)
	assert.Equal(t, ReshapeStats{Rows: 5, DroppedRows: 1, Records: 8, MissingReadings: 1}, a.Stats.Reshape)

	v, ok := a.Monthly.Value(2015, 1, "Kraków")
	require.True(t, ok)
	// (10+14+18+20 + 1+1+1) / 7
	assert.InDelta(t, 65.0/7.0, v, 1e-12)
	assert.Len(t, a.Exceedances, 2)
	assert.Equal(t, Station{City: "Kraków", Code: "S2"}, a.Stations["S2"])
}

func TestAnalyze_DoesNotMutateInputAndIsIdempotent(t *testing.T) {
	table := suffixedTable()
	snapshot := table.Clone()

	first, err := Analyze(table, DefaultOptions())
	require.NoError(t, err)
	second, err := Analyze(table, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, snapshot, table)
	assert.Equal(t, first, second)
}

func TestAnalyze_StructuralFault(t *testing.T) {
	table := suffixedTable()
	table.Columns = append(table.Columns, StationColumn{Header: "123"})

	_, err := Analyze(table, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedStation)
	assert.Contains(t, err.Error(), `"123"`)

	_, err = MonthlyAverage(table, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnresolvedStation)
	_, err = CountDaysOverThreshold(table, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnresolvedStation)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		table := RawTable{Columns: []StationColumn{{Header: "Warszawa"}}}
		a, err := Analyze(table, DefaultOptions())
		require.NoError(t, err)
		assert.NotNil(t, a.Monthly.Rows)
		assert.Empty(t, a.Monthly.Rows)
		assert.Empty(t, a.Monthly.Cities)
		assert.NotNil(t, a.Exceedances)
		assert.Empty(t, a.Exceedances)
	})

	t.Run("offset past the end", func(t *testing.T) {
		opts := DefaultOptions()
		opts.FirstDataRow = 100
		a, err := Analyze(suffixedTable(), opts)
		require.NoError(t, err)
		assert.Empty(t, a.Monthly.Rows)
		assert.Empty(t, a.Exceedances)
	})

	t.Run("zero value table", func(t *testing.T) {
		_, err := Analyze(RawTable{}, DefaultOptions())
		require.NoError(t, err)
	})
}

func TestAnalyze_InvalidOptions(t *testing.T) {
	_, err := Analyze(suffixedTable(), Options{Threshold: 15, FirstDataRow: -1})
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestRawTable_Clone(t *testing.T) {
	table := suffixedTable()
	clone := table.Clone()
	clone.Rows[2].Values[0] = "999"
	clone.Columns[0].Header = "Gdańsk"

	assert.Equal(t, "10", table.Rows[2].Values[0])
	assert.Equal(t, "Warszawa", table.Columns[0].Header)
}
