// Package scheduler decides, for one contact on one civil date, whether a
// reminder fires and which template carries it. It never errors; a negative
// decision carries a human-readable reason instead.
package scheduler

import (
	"time"

	"github.com/cshealth/reminder-gateway/internal/catalog"
	"github.com/cshealth/reminder-gateway/internal/dates"
	"github.com/cshealth/reminder-gateway/internal/model"
)

const (
	ReasonCancelled  = "Contact is cancelled."
	ReasonNoReminder = "Contact has no reminders for today's date."
)

// gridPoint anchors a reminder kind at its post-birth offset.
type gridPoint struct {
	kind   model.ReminderKind
	anchor func(fdob time.Time) time.Time
}

// The twelve (kind, offset) pairs are evaluated in this order and the first
// match wins. The order is authoritative: if two points ever landed on the
// same day, the earlier appointment is the one worth reminding about.
var grid = []gridPoint{
	{model.ReminderSixWeek, func(d time.Time) time.Time { return dates.AddWeeks(d, 6) }},
	{model.ReminderTenWeek, func(d time.Time) time.Time { return dates.AddWeeks(d, 10) }},
	{model.ReminderFourteenWeek, func(d time.Time) time.Time { return dates.AddWeeks(d, 14) }},
	{model.ReminderNineMonth, func(d time.Time) time.Time { return dates.AddMonths(d, 9) }},
	{model.ReminderSixteenMonth, func(d time.Time) time.Time { return dates.AddMonths(d, 16) }},
	{model.ReminderFiveYear, func(d time.Time) time.Time { return dates.AddYears(d, 5) }},
}

var offsets = []model.Offset{model.OffsetSevenDays, model.OffsetOneDay}

// Decision is the scheduler's verdict for one contact on one day.
type Decision struct {
	Fire   bool
	Kind   model.ReminderKind
	Offset model.Offset

	// Body is the filled template, populated only when Fire is true.
	Body string

	// Reason explains a negative decision.
	Reason string
}

// Decide evaluates the reminder grid for the contact on the given civil date.
func Decide(c *model.Contact, today time.Time) Decision {
	if c.Cancelled {
		return Decision{Reason: ReasonCancelled}
	}

	today = dates.Civil(today)
	fdob := dates.Civil(c.FunctionalDateOfBirth())

	for _, point := range grid {
		anchor := point.anchor(fdob)
		for _, offset := range offsets {
			if today.Equal(dates.AddDays(anchor, -offset.Days())) {
				return Decision{
					Fire:   true,
					Kind:   point.kind,
					Offset: offset,
					Body:   catalog.Fill(catalog.Get(point.kind.TemplateKey(offset), c.Language), c.Name),
				}
			}
		}
	}

	return Decision{Reason: ReasonNoReminder}
}
