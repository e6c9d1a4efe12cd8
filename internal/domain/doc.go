// Package domain turns wide PM2.5 measurement tables into monthly city averages and
// yearly counts of days above a health threshold.
//
// # Data Source
//
// Tables come from the Polish Chief Inspectorate of Environmental Protection (GIOŚ)
// yearly archives of hourly and daily PM2.5 readings, published as XLSX workbooks at
// https://powietrze.gios.gov.pl/pjp/archives. Each workbook is one wide table: one
// timestamp column, then one column per measuring station. Readings are µg/m³.
//
// # Timestamp Encodings
//
// The timestamp column arrives in one of two encodings, fixed per table:
//
//	full precision:   "2015-01-01 01:00:00.000005"
//	second precision: "2015-01-01 01:00:00"
//
// The fraction is an artifact of Excel storing times as floating-point day serials.
// Values are parsed with full precision first and only the leftovers with second
// precision; see [TimestampNormalizer]. A value neither layout accepts drops its row
// from every aggregate.
//
// # Station Encodings
//
// Station identity is encoded in one of two schemes, fixed per table and detected
// once by [SelectResolver]:
//
//	embedded tuple:  each column carries the label "('Warszawa', 'MzWarAlNiepo')"
//	suffixed column: the header is the city, repeated cities get ".1", ".2", ...
//	                 "Kraków", "Kraków.1", "Kraków.2"
//
// Every column must resolve to a city. An unresolved column is a structural error
// ([ErrUnresolvedStation]), never a silent drop.
//
// # Missing Values
//
// Empty cells, text such as "brak danych", NaN and infinities are missing readings.
// They are excluded from every mean and never treated as zero. A city-month with no
// valid reading has a missing cell; a station-day with no valid reading is neither
// exceeded nor not exceeded.
//
// # Aggregations
//
//	monthly:    mean of all valid readings per (year, month, city), all stations pooled
//	exceedance: mean per (year, date, city, station), flag mean > threshold,
//	            sum of flags per (year, city, station)
//
// The default threshold is the WHO 2021 24-hour PM2.5 guideline, 15 µg/m³.
//
// # Ownership
//
// Analysis functions never modify the caller's [RawTable]; they work on a [RawTable.Clone].
package domain
