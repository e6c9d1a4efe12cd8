package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

// meanAcc accumulates the arithmetic mean of valid readings only.
type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(r Reading) {
	if !r.Valid {
		return
	}
	a.sum += r.Value
	a.count++
}

func (a meanAcc) mean() Reading {
	if a.count == 0 {
		return Reading{}
	}
	return ValidReading(a.sum / float64(a.count))
}

// MonthlyMean is the mean concentration of one city in one month. Mean is missing
// when the group had no valid reading.
type MonthlyMean struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	City  string     `json:"city"`
	Mean  Reading    `json:"mean"`
	Count int        `json:"count"`
}

type monthlyKey struct {
	year  int
	month time.Month
	city  string
}

// MonthlyMeans groups records by (year, month, city). Groups are returned in order
// of first occurrence.
func MonthlyMeans(records []MonthlyRecord) []MonthlyMean {
	index := make(map[monthlyKey]int)
	var keys []monthlyKey
	var accs []meanAcc

	for _, rec := range records {
		k := monthlyKey{year: rec.Year, month: rec.Month, city: rec.City}
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			accs = append(accs, meanAcc{})
		}
		accs[i].add(rec.Value)
	}

	out := make([]MonthlyMean, len(keys))
	for i, k := range keys {
		out[i] = MonthlyMean{Year: k.year, Month: k.month, City: k.city, Mean: accs[i].mean(), Count: accs[i].count}
	}
	return out
}

// DailyMean is the mean of one station's valid readings on one day.
type DailyMean struct {
	Year    int     `json:"year"`
	Date    Date    `json:"date"`
	City    string  `json:"city"`
	Station string  `json:"station"`
	Mean    float64 `json:"mean"`
	Count   int     `json:"count"`
}

type dailyKey struct {
	year    int
	date    Date
	city    string
	station string
}

// DailyMeans groups records by (year, date, city, station). Days without any valid
// reading are omitted: they count neither as exceeded nor as not exceeded.
func DailyMeans(records []DailyRecord) []DailyMean {
	index := make(map[dailyKey]int)
	var keys []dailyKey
	var accs []meanAcc

	for _, rec := range records {
		k := dailyKey{year: rec.Year, date: rec.Date, city: rec.City, station: rec.Station}
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			accs = append(accs, meanAcc{})
		}
		accs[i].add(rec.Value)
	}

	out := make([]DailyMean, 0, len(keys))
	for i, k := range keys {
		m := accs[i].mean()
		if !m.Valid {
			continue
		}
		out = append(out, DailyMean{Year: k.year, Date: k.date, City: k.city, Station: k.station, Mean: m.Value, Count: accs[i].count})
	}
	return out
}

// Exceedance is the number of days in a year on which a station's daily mean was
// strictly above the threshold. ValidDays is the number of days that had data.
type Exceedance struct {
	Year         int    `json:"year"`
	City         string `json:"city"`
	Station      string `json:"station"`
	DaysExceeded int    `json:"days_exceeded"`
	ValidDays    int    `json:"valid_days"`
}

// ExceedanceSummary holds one row per (year, city, station), sorted by that key.
type ExceedanceSummary []Exceedance

type stationYearKey struct {
	year    int
	city    string
	station string
}

// CountExceedances computes daily means, flags days with mean > threshold and sums
// the flags per (year, city, station). Every station-year present in records gets
// a row, with zero days when nothing exceeded.
func CountExceedances(records []DailyRecord, threshold float64) (ExceedanceSummary, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("count exceedances: %v: %w", threshold, ErrInvalidThreshold)
	}

	index := make(map[stationYearKey]int)
	out := ExceedanceSummary{}
	for _, rec := range records {
		k := stationYearKey{year: rec.Year, city: rec.City, station: rec.Station}
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = len(out)
		out = append(out, Exceedance{Year: k.year, City: k.city, Station: k.station})
	}

	for _, day := range DailyMeans(records) {
		row := &out[index[stationYearKey{year: day.Year, city: day.City, station: day.Station}]]
		row.ValidDays++
		if day.Mean > threshold {
			row.DaysExceeded++
		}
	}

	slices.SortFunc(out, func(a, b Exceedance) int {
		return cmp.Or(
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.City, b.City),
			cmp.Compare(a.Station, b.Station),
		)
	})
	return out, nil
}

// Years returns the distinct years of the summary in ascending order.
func (s ExceedanceSummary) Years() []int {
	var years []int
	for _, e := range s {
		if n := len(years); n == 0 || years[n-1] != e.Year {
			years = append(years, e.Year)
		}
	}
	return years
}

// Top returns up to n stations of the given year with the most exceedance days.
// Ties keep city/station order.
func (s ExceedanceSummary) Top(year, n int) ExceedanceSummary {
	return s.rank(year, n, func(a, b Exceedance) int { return cmp.Compare(b.DaysExceeded, a.DaysExceeded) })
}

// Bottom returns up to n stations of the given year with the fewest exceedance days.
func (s ExceedanceSummary) Bottom(year, n int) ExceedanceSummary {
	return s.rank(year, n, func(a, b Exceedance) int { return cmp.Compare(a.DaysExceeded, b.DaysExceeded) })
}

func (s ExceedanceSummary) rank(year, n int, by func(a, b Exceedance) int) ExceedanceSummary {
	out := ExceedanceSummary{}
	for _, e := range s {
		if e.Year == year {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, by)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
