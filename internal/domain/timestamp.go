package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is one accepted timestamp encoding. A value matches only when the
// pattern covers the whole trimmed value and time.Parse accepts it. The pattern is
// needed because time.Parse tolerates a fractional second the layout does not name.
type TimestampLayout struct {
	Name    string
	pattern *regexp.Regexp
	layout  string
}

var (
	// FullPrecision is "2015-01-01 01:00:00.000005": date, time and a 1-9 digit fraction.
	FullPrecision = TimestampLayout{
		Name:    "full_precision",
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{1,9}$`),
		layout:  "2006-01-02 15:04:05.999999999",
	}

	// SecondPrecision is "2015-01-01 01:00:00".
	SecondPrecision = TimestampLayout{
		Name:    "second_precision",
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),
		layout:  time.DateTime,
	}
)

func (l TimestampLayout) parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !l.pattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(l.layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Date is a calendar day without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Timestamp is the result of normalizing one raw timestamp: either a parsed
// calendar time (OK) or unparsed. Unparsed rows are excluded from every aggregate.
type Timestamp struct {
	Time   time.Time
	Layout string
	OK     bool
}

func (t Timestamp) Year() int         { return t.Time.Year() }
func (t Timestamp) Month() time.Month { return t.Time.Month() }
func (t Timestamp) Date() Date        { return DateOf(t.Time) }

// TimestampStats counts how each value of a column was resolved.
type TimestampStats struct {
	ByLayout map[string]int `json:"by_layout"`
	Unparsed int            `json:"unparsed"`
}

// TimestampNormalizer tries its layouts in order. Each later layout only sees the
// values every earlier layout rejected.
type TimestampNormalizer struct {
	layouts []TimestampLayout
}

// NewTimestampNormalizer creates a normalizer trying layouts in the given order.
func NewTimestampNormalizer(layouts ...TimestampLayout) *TimestampNormalizer {
	return &TimestampNormalizer{layouts: layouts}
}

// DefaultTimestampNormalizer tries full precision first, then second precision.
// The order matters: a second-precision pass over full-precision values would
// silently drop their fraction.
func DefaultTimestampNormalizer() *TimestampNormalizer {
	return NewTimestampNormalizer(FullPrecision, SecondPrecision)
}

// Normalize parses values into a new slice; the input is not modified.
func (n *TimestampNormalizer) Normalize(values []string) ([]Timestamp, TimestampStats) {
	out := make([]Timestamp, len(values))
	stats := TimestampStats{ByLayout: make(map[string]int, len(n.layouts))}

	pending := make([]int, len(values))
	for i := range values {
		pending[i] = i
	}

	for _, l := range n.layouts {
		if len(pending) == 0 {
			break
		}
		residual := pending[:0:0]
		for _, i := range pending {
			t, ok := l.parse(values[i])
			if !ok {
				residual = append(residual, i)
				continue
			}
			out[i] = Timestamp{Time: t, Layout: l.Name, OK: true}
			stats.ByLayout[l.Name]++
		}
		pending = residual
	}

	stats.Unparsed = len(pending)
	return out, stats
}
