// Command genmock writes synthetic hourly PM2.5 workbooks in both station
// encodings used by the GIOŚ archive, for local runs and demos of the pipeline.
//
// Usage:
//
//	go run ./cmd/genmock -out data -year 2015 -days 90
//
// It writes <year>_PM25_1g.xlsx (suffixed headers, read with LABEL_ROW=-1) and
// <year>_PM25_1g_labels.xlsx (compound labels in row 2, read with LABEL_ROW=1).
// Both start with two metadata rows, skipped with FIRST_DATA_ROW=2.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/adapter/xlsx"
	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
)

type station struct {
	city string
	code string
	base float64 // typical winter concentration in µg/m³
}

var stations = []station{
	{city: "Warszawa", code: "MzWarAlNiepo", base: 32},
	{city: "Warszawa", code: "MzWarKondrat", base: 28},
	{city: "Kraków", code: "MpKrakAlKras", base: 55},
	{city: "Kraków", code: "MpKrakBujaka", base: 47},
	{city: "Wrocław", code: "DsWrocWisA", base: 35},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory")
	year := flag.Int("year", 2015, "measurement year")
	days := flag.Int("days", 60, "number of days from January 1st")
	missing := flag.Float64("missing", 0.03, "fraction of readings left empty")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *days < 1 || *days > 366 {
		return fmt.Errorf("days must be 1-366, got %d", *days)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, uint64(*year)))
	rows := hourlyRows(rng, *year, *days, *missing)

	suffixed := filepath.Join(*out, fmt.Sprintf("%d_PM25_1g.xlsx", *year))
	if err := xlsx.WriteTable(suffixed, "", table(rows, suffixedColumns())); err != nil {
		return fmt.Errorf("write %s: %w", suffixed, err)
	}
	labeled := filepath.Join(*out, fmt.Sprintf("%d_PM25_1g_labels.xlsx", *year))
	if err := xlsx.WriteTable(labeled, "", table(rows, labeledColumns())); err != nil {
		return fmt.Errorf("write %s: %w", labeled, err)
	}

	log.Printf("wrote %d hourly rows for %d stations to %s and %s", len(rows)-2, len(stations), suffixed, labeled)
	return nil
}

// suffixedColumns names repeated cities the way a spreadsheet export
// de-duplicates headers: Warszawa, Warszawa.1, ...
func suffixedColumns() []domain.StationColumn {
	cols := []domain.StationColumn{{Header: "Rok"}}
	seen := map[string]int{}
	for _, s := range stations {
		header := s.city
		if n := seen[s.city]; n > 0 {
			header = s.city + "." + strconv.Itoa(n)
		}
		seen[s.city]++
		cols = append(cols, domain.StationColumn{Header: header})
	}
	return cols
}

func labeledColumns() []domain.StationColumn {
	cols := []domain.StationColumn{{Header: "Rok"}}
	for _, s := range stations {
		cols = append(cols, domain.StationColumn{Header: s.code, Label: domain.FormatStationLabel(s.city, s.code)})
	}
	return cols
}

func table(rows []domain.RawRow, cols []domain.StationColumn) domain.RawTable {
	return domain.RawTable{Columns: cols, Rows: rows}
}

// hourlyRows produces two metadata rows followed by one row per hour. Odd days
// use the full-precision timestamp encoding, even days whole seconds.
func hourlyRows(rng *rand.Rand, year, days int, missing float64) []domain.RawRow {
	meta := func(label, value string) domain.RawRow {
		values := []string{""}
		for range stations {
			values = append(values, value)
		}
		return domain.RawRow{Timestamp: label, Values: values}
	}
	rows := []domain.RawRow{
		meta("Wskaźnik", "PM2.5"),
		meta("Czas uśredniania", "1g"),
	}

	start := time.Date(year, time.January, 1, 1, 0, 0, 0, time.UTC)
	for h := 0; h < days*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		layout := time.DateTime
		if ts.Day()%2 == 1 {
			layout = "2006-01-02 15:04:05.000000"
		}

		values := []string{strconv.Itoa(year)}
		for _, s := range stations {
			if rng.Float64() < missing {
				values = append(values, "")
				continue
			}
			values = append(values, strconv.FormatFloat(reading(rng, s, ts), 'f', 1, 64))
		}
		rows = append(rows, domain.RawRow{Timestamp: ts.Format(layout), Values: values})
	}
	return rows
}

// reading models a winter-heavy seasonal cycle with a morning and evening peak.
func reading(rng *rand.Rand, s station, ts time.Time) float64 {
	season := 0.55 + 0.45*math.Cos(2*math.Pi*float64(ts.YearDay())/365)
	daily := 1 + 0.25*math.Sin(2*math.Pi*float64(ts.Hour()-4)/12)
	v := s.base * season * daily * (0.7 + 0.6*rng.Float64())
	return math.Max(1, v)
}
