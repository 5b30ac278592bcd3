// Package dates holds the civil-date helpers the scheduler and the inbound
// parser share. Dates are day-granular; every value is normalized to midnight
// UTC so equality is equality of calendar days.
package dates

import (
	"errors"
	"time"
)

const DefaultTimezone = "Asia/Kolkata"

var (
	ErrInvalidDate    = errors.New("unparseable date")
	ErrDateOutOfRange = errors.New("date outside accepted range")
)

// Layouts the inbound text parser accepts, tried in order. The two-digit-year
// form must come first or "30/1/17" would never match.
var inboundLayouts = []string{
	"2/1/06",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"1-2-2006",
}

// The bulk importer only accepts unambiguous forms.
var importLayouts = []string{
	"2/1/2006",
	"2006-1-2",
}

// Civil truncates t to its calendar day, re-homed in UTC.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current civil date in loc.
func Today(loc *time.Location) time.Time {
	return Civil(time.Now().In(loc))
}

// ParseInbound parses a date token from an inbound SMS. A parseable date whose
// year is more than 18 years before today's or more than 2 years after it is
// rejected; subscribers are children, not adults. The bound is on the year
// alone, so any day of the boundary years passes.
func ParseInbound(s string, today time.Time) (time.Time, error) {
	d, err := parse(s, inboundLayouts)
	if err != nil {
		return time.Time{}, err
	}
	if today.Year()-d.Year() > 18 || d.Year()-today.Year() > 2 {
		return time.Time{}, ErrDateOutOfRange
	}
	return d, nil
}

// ParseImport is the stricter parser the CSV importer uses.
func ParseImport(s string) (time.Time, error) {
	return parse(s, importLayouts)
}

func parse(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if d, err := time.Parse(layout, s); err == nil {
			return Civil(d), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Format renders a civil date as d/m/Y.
func Format(t time.Time) string {
	return t.Format("2/1/2006")
}

func AddDays(t time.Time, n int) time.Time { return Civil(t).AddDate(0, 0, n) }

func AddWeeks(t time.Time, n int) time.Time { return Civil(t).AddDate(0, 0, 7*n) }

// AddMonths uses calendar months, not 30-day blocks; 9 months after 30 May is
// 2 March on AddDate's normalization rules, which is what the grid wants.
func AddMonths(t time.Time, n int) time.Time { return Civil(t).AddDate(0, n, 0) }

func AddYears(t time.Time, n int) time.Time { return Civil(t).AddDate(n, 0, 0) }
