package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// Language is the contact's preferred message language.
type Language string

const (
	LanguageEnglish  Language = "English"
	LanguageHindi    Language = "Hindi"
	LanguageGujarati Language = "Gujarati"
)

type Contact struct {
	ID           int64     `json:"id"             db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	Name         string    `json:"name"           db:"name"            gorm:"column:name;not null"`
	PhoneNumber  string    `json:"phone_number"   db:"phone_number"    gorm:"column:phone_number;not null"`
	Language     Language  `json:"language"       db:"language"        gorm:"column:language;not null;default:English"`
	DateOfBirth  time.Time `json:"date_of_birth"  db:"date_of_birth"   gorm:"column:date_of_birth;not null"`
	DateOfSignUp time.Time `json:"date_of_sign_up" db:"date_of_sign_up" gorm:"column:date_of_sign_up;not null"`
	DelayInDays  int       `json:"delay_in_days"  db:"delay_in_days"   gorm:"column:delay_in_days;not null;default:0"`

	// PregSignup is true iff the contact was enrolled before the child was born.
	PregSignup bool `json:"preg_signup" db:"preg_signup" gorm:"column:preg_signup;not null;default:false"`

	// Cancelled is monotonic: once true it is never cleared for this contact.
	Cancelled bool `json:"cancelled" db:"cancelled" gorm:"column:cancelled;not null;default:false"`

	MethodOfSignUp string     `json:"method_of_sign_up" db:"method_of_sign_up" gorm:"column:method_of_sign_up"`
	LastHeardFrom  *time.Time `json:"last_heard_from"   db:"last_heard_from"   gorm:"column:last_heard_from"`
	LastContacted  *time.Time `json:"last_contacted"    db:"last_contacted"    gorm:"column:last_contacted"`
	TimeCreated    time.Time  `json:"time_created"      db:"time_created"      gorm:"column:time_created;autoCreateTime"`

	// Demographics is the opaque bag (state, district, city, religion, income, ...)
	// stored verbatim for the admin surface; the core never reads it.
	Demographics datatypes.JSONMap `json:"demographics" db:"demographics" gorm:"column:demographics"`

	Groups []*Group `json:"-" gorm:"many2many:contact_groups;"`
}

func (Contact) TableName() string { return "contacts" }

// FunctionalDateOfBirth is the date the reminder grid anchors on.
func (c *Contact) FunctionalDateOfBirth() time.Time {
	return c.DateOfBirth.AddDate(0, 0, c.DelayInDays)
}

type Group struct {
	ID   int64  `json:"id"   db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string `json:"name" db:"name" gorm:"column:name;not null;uniqueIndex"`
}

func (Group) TableName() string { return "groups" }

// ContactCreateRequest is the input for enrolling a contact, whether it comes
// from an inbound text or from the bulk importer.
type ContactCreateRequest struct {
	Name           string
	PhoneNumber    string
	Language       Language
	DateOfBirth    time.Time
	DateOfSignUp   time.Time
	DelayInDays    int
	MethodOfSignUp string
}

func (p ContactCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.PhoneNumber == "" {
		return errors.New("phone_number is required")
	}
	if p.DateOfBirth.IsZero() {
		return errors.New("date_of_birth is required")
	}
	return nil
}
