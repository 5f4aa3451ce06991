package domain

import (
	"fmt"
	"time"
)

// dateLayout is the ISO day format the upstream feed API speaks.
const dateLayout = "2006-01-02"

// Date is a calendar day in UTC, the feed's natural granularity. Using a
// dedicated type keeps date-range cache keys canonical regardless of the
// wall-clock time a caller passes in.
type Date struct {
	t time.Time
}

// NewDate truncates a time to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format(dateLayout) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

// After reports whether d falls after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
