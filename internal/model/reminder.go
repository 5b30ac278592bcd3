package model

// ReminderKind is one of the six schedule points past the functional date of
// birth.
type ReminderKind string

const (
	ReminderSixWeek      ReminderKind = "six_week"
	ReminderTenWeek      ReminderKind = "ten_week"
	ReminderFourteenWeek ReminderKind = "fourteen_week"
	ReminderNineMonth    ReminderKind = "nine_month"
	ReminderSixteenMonth ReminderKind = "sixteen_month"
	ReminderFiveYear     ReminderKind = "five_year"
)

// Offset is how far ahead of the anchor date a reminder fires.
type Offset string

const (
	OffsetSevenDays Offset = "seven_days"
	OffsetOneDay    Offset = "one_day"
)

func (o Offset) Days() int {
	if o == OffsetSevenDays {
		return 7
	}
	return 1
}

// TemplateKey is the catalog key for this kind at the given offset,
// e.g. "six_week_seven_days".
func (k ReminderKind) TemplateKey(o Offset) string {
	return string(k) + "_" + string(o)
}
