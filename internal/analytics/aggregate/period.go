// Package aggregate rolls deal, expense, work-log and lead snapshots up into
// pipeline, revenue, cost and dashboard read models. Every function here is
// pure: missing optional data degrades to a documented default and ratios
// with an empty denominator are 0.
package aggregate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Period is an inclusive range of calendar days. A nil bound is open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether either end of the range is set.
func (p Period) Bounded() bool {
	return p.Start != nil || p.End != nil
}

// Contains reports whether t's calendar day lies within the period.
func (p Period) Contains(t time.Time) bool {
	day := dayOf(t)
	if p.Start != nil && day.Before(*p.Start) {
		return false
	}
	if p.End != nil && day.After(*p.End) {
		return false
	}
	return true
}

// ContainsPtr is Contains for optional dates. A missing date falls outside
// any bounded period and inside an open one.
func (p Period) ContainsPtr(t *time.Time) bool {
	if t == nil {
		return !p.Bounded()
	}
	return p.Contains(*t)
}

// MarshalJSON renders bounds as ISO dates, null when open.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
	}{formatDay(p.Start), formatDay(p.End)})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (p *Period) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Start, p.End = nil, nil
	if raw.StartDate != nil {
		if d, ok := ParseDay(*raw.StartDate); ok {
			p.Start = &d
		}
	}
	if raw.EndDate != nil {
		if d, ok := ParseDay(*raw.EndDate); ok {
			p.End = &d
		}
	}
	return nil
}

// MonthToDate is the current calendar month up to and including today.
func MonthToDate(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := dayOf(now)
	return Period{Start: &start, End: &end}
}

// CalendarMonth covers every day of the month containing t.
func CalendarMonth(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Period{Start: &start, End: &end}
}

// ParsePeriod reads optional ISO date bounds. With defaultToMonth a missing
// start becomes the first of the current month and a missing end becomes
// today; otherwise missing bounds stay open. A bound that cannot be parsed
// is replaced by its default and reported in the returned warnings.
func ParsePeriod(start, end string, now time.Time, defaultToMonth bool) (Period, []string) {
	var (
		p        Period
		warnings []string
		defaults Period
	)
	if defaultToMonth {
		defaults = MonthToDate(now)
	}

	p.Start = defaults.Start
	if strings.TrimSpace(start) != "" {
		if d, ok := ParseDay(start); ok {
			p.Start = &d
		} else {
			warnings = append(warnings, fmt.Sprintf("start_date %q is not a valid date; using %s", start, describeBound(defaults.Start, "no lower bound")))
		}
	}

	p.End = defaults.End
	if strings.TrimSpace(end) != "" {
		if d, ok := ParseDay(end); ok {
			p.End = &d
		} else {
			warnings = append(warnings, fmt.Sprintf("end_date %q is not a valid date; using %s", end, describeBound(defaults.End, "no upper bound")))
		}
	}

	return p, warnings
}

// ParseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar day at midnight UTC.
func ParseDay(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, trimmed); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return dayOf(t), true
	}
	return time.Time{}, false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func describeBound(t *time.Time, open string) string {
	if t == nil {
		return open
	}
	return t.Format(dateLayout)
}
