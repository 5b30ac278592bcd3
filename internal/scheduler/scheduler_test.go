package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cshealth/reminder-gateway/internal/catalog"
	"github.com/cshealth/reminder-gateway/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contact(dob time.Time) *model.Contact {
	return &model.Contact{
		ID:          1,
		Name:        "TestPerson",
		PhoneNumber: "+15551234567",
		Language:    model.LanguageEnglish,
		DateOfBirth: dob,
	}
}

func TestDecide_Grid(t *testing.T) {
	dob := day(2017, time.June, 12)

	t.Run("six week reminder one week out", func(t *testing.T) {
		d := Decide(contact(dob), day(2017, time.July, 17))
		assert.True(t, d.Fire)
		assert.Equal(t, model.ReminderSixWeek, d.Kind)
		assert.Equal(t, model.OffsetSevenDays, d.Offset)
		assert.Equal(t,
			"TestPerson has a six week immunization appointment in one week. Please visit your nearest health centre.",
			d.Body)
	})

	t.Run("six week reminder the day before", func(t *testing.T) {
		d := Decide(contact(dob), day(2017, time.July, 23))
		assert.True(t, d.Fire)
		assert.Equal(t, model.ReminderSixWeek, d.Kind)
		assert.Equal(t, model.OffsetOneDay, d.Offset)
	})

	t.Run("off grid day fires nothing", func(t *testing.T) {
		// dob + 4 weeks + 6 days
		d := Decide(contact(dob), day(2017, time.July, 10))
		assert.False(t, d.Fire)
		assert.Equal(t, ReasonNoReminder, d.Reason)
	})

	t.Run("appointment day itself fires nothing", func(t *testing.T) {
		d := Decide(contact(dob), day(2017, time.July, 24))
		assert.False(t, d.Fire)
	})

	t.Run("month based points use calendar months", func(t *testing.T) {
		d := Decide(contact(day(2016, time.October, 24)), day(2017, time.July, 17))
		assert.True(t, d.Fire)
		assert.Equal(t, model.ReminderNineMonth, d.Kind)
		assert.Equal(t, model.OffsetSevenDays, d.Offset)
	})

	t.Run("sixteen month point", func(t *testing.T) {
		dob := day(2016, time.March, 24)
		d := Decide(contact(dob), day(2017, time.July, 23))
		assert.True(t, d.Fire)
		assert.Equal(t, model.ReminderSixteenMonth, d.Kind)
		assert.Equal(t, model.OffsetOneDay, d.Offset)
	})

	t.Run("five year point", func(t *testing.T) {
		dob := day(2012, time.July, 24)
		d := Decide(contact(dob), day(2017, time.July, 17))
		assert.True(t, d.Fire)
		assert.Equal(t, model.ReminderFiveYear, d.Kind)
	})
}

func TestDecide_DelayShiftsTheAnchor(t *testing.T) {
	c := contact(day(2017, time.June, 12))
	c.DelayInDays = 3

	// Without the delay this day matched six_week_seven_days.
	d := Decide(c, day(2017, time.July, 17))
	assert.False(t, d.Fire)

	d = Decide(c, day(2017, time.July, 20))
	assert.True(t, d.Fire)
	assert.Equal(t, model.ReminderSixWeek, d.Kind)
	assert.Equal(t, model.OffsetSevenDays, d.Offset)
}

func TestDecide_Cancelled(t *testing.T) {
	c := contact(day(2017, time.June, 12))
	c.Cancelled = true

	for _, today := range []time.Time{
		day(2017, time.July, 17),
		day(2017, time.July, 23),
		day(2022, time.June, 11),
	} {
		d := Decide(c, today)
		assert.False(t, d.Fire, today)
		assert.Equal(t, ReasonCancelled, d.Reason, today)
	}
}

func TestDecide_LanguagePicksTemplate(t *testing.T) {
	c := contact(day(2017, time.June, 12))
	c.Language = model.LanguageHindi
	c.Name = "आरव"

	d := Decide(c, day(2017, time.July, 17))
	assert.True(t, d.Fire)
	assert.Equal(t, catalog.Fill(catalog.Get("six_week_seven_days", model.LanguageHindi), "आरव"), d.Body)
}

func TestDecide_TimeOfDayIrrelevant(t *testing.T) {
	c := contact(day(2017, time.June, 12))
	ist := time.FixedZone("IST", 5*3600+1800)

	d := Decide(c, time.Date(2017, time.July, 17, 23, 55, 0, 0, ist))
	assert.True(t, d.Fire)
	assert.Equal(t, model.ReminderSixWeek, d.Kind)
}
