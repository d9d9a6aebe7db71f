// Package period models the half-year reporting windows the analysis runs on.
//
// Labels have the form YYYY-H1 (1 January to 30 June) or YYYY-H2 (1 July to
// 31 December). Bounds are inclusive calendar days in UTC.
package period

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moolen/casa/internal/analysis"
)

// ErrInvalidLabel is returned for labels that are not YYYY-H1 or YYYY-H2
var ErrInvalidLabel = errors.New("invalid period label")

// Half identifies the first or second half of a year
type Half int

const (
	H1 Half = 1
	H2 Half = 2
)

// Period is one half-year reporting window
type Period struct {
	Year  int
	Half  Half
	Start time.Time // first day, 00:00 UTC
	End   time.Time // last day, 00:00 UTC
}

// New builds the period for a year and half.
func New(year int, half Half) Period {
	startMonth, endMonth, endDay := time.January, time.June, 30
	if half == H2 {
		startMonth, endMonth, endDay = time.July, time.December, 31
	}
	return Period{
		Year:  year,
		Half:  half,
		Start: time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, endMonth, endDay, 0, 0, 0, 0, time.UTC),
	}
}

// Parse validates a label such as "2024-H1".
func Parse(label string) (Period, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(label)), "-")
	if len(parts) != 2 || len(parts[0]) != 4 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	switch parts[1] {
	case "H1":
		return New(year, H1), nil
	case "H2":
		return New(year, H2), nil
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
}

// Of returns the period containing t.
func Of(t time.Time) Period {
	t = t.UTC()
	if t.Month() <= time.June {
		return New(t.Year(), H1)
	}
	return New(t.Year(), H2)
}

// Label returns the canonical label, e.g. "2024-H2"
func (p Period) Label() string {
	return fmt.Sprintf("%04d-H%d", p.Year, p.Half)
}

// String implements fmt.Stringer
func (p Period) String() string {
	return p.Label()
}

// DisplayName returns a human readable name, e.g. "2024 H1 (Jan-Jun)"
func (p Period) DisplayName() string {
	if p.Half == H1 {
		return fmt.Sprintf("%04d H1 (Jan-Jun)", p.Year)
	}
	return fmt.Sprintf("%04d H2 (Jul-Dec)", p.Year)
}

// Contains reports whether t falls on a calendar day inside the period.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Before orders periods chronologically
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Half < other.Half
}

// Next returns the following half-year
func (p Period) Next() Period {
	if p.Half == H1 {
		return New(p.Year, H2)
	}
	return New(p.Year+1, H1)
}

// Available returns every period whose months are all covered by the month range of
// dates, in chronological order. A single date in June and one in January of the same
// year cover H1 even if no data exists for the months in between.
func Available(dates []time.Time) []Period {
	if len(dates) == 0 {
		return nil
	}
	minMonth, maxMonth := monthIndex(dates[0]), monthIndex(dates[0])
	for _, d := range dates[1:] {
		m := monthIndex(d)
		if m < minMonth {
			minMonth = m
		}
		if m > maxMonth {
			maxMonth = m
		}
	}

	var out []Period
	for p := Of(monthStart(minMonth)); monthIndex(p.Start) <= maxMonth; p = p.Next() {
		if monthIndex(p.Start) >= minMonth && monthIndex(p.End) <= maxMonth {
			out = append(out, p)
		}
	}
	return out
}

// Sort parses and orders labels chronologically, dropping duplicates.
func Sort(labels []string) ([]Period, error) {
	seen := make(map[string]struct{}, len(labels))
	periods := make([]Period, 0, len(labels))
	for _, l := range labels {
		p, err := Parse(l)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p.Label()]; ok {
			continue
		}
		seen[p.Label()] = struct{}{}
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods, nil
}

// ParseList splits a comma separated label list and orders it chronologically.
func ParseList(csv string) ([]Period, error) {
	var labels []string
	for _, l := range strings.Split(csv, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidLabel)
	}
	return Sort(labels)
}

// Labels returns the labels of periods
func Labels(periods []Period) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.Label()
	}
	return out
}

// Select returns the cases dated inside p, in input order.
func Select(cases []analysis.Case, p Period) []analysis.Case {
	out := make([]analysis.Case, 0)
	for _, c := range cases {
		if p.Contains(c.Date) {
			out = append(out, c)
		}
	}
	return out
}

func monthIndex(t time.Time) int {
	t = t.UTC()
	return t.Year()*12 + int(t.Month()) - 1
}

func monthStart(idx int) time.Time {
	return time.Date(idx/12, time.Month(idx%12+1), 1, 0, 0, 0, 0, time.UTC)
}
