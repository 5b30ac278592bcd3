package repository

import (
	"time"

	"gorm.io/datatypes"

	"github.com/cshealth/reminder-gateway/internal/model"
)

type ContactEntity struct {
	ID             int64             `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	Name           string            `db:"name"              gorm:"column:name;not null;uniqueIndex:idx_contacts_name_phone"`
	PhoneNumber    string            `db:"phone_number"      gorm:"column:phone_number;not null;uniqueIndex:idx_contacts_name_phone"`
	Language       string            `db:"language"          gorm:"column:language;not null;default:English"`
	DateOfBirth    time.Time         `db:"date_of_birth"     gorm:"column:date_of_birth;not null"`
	DateOfSignUp   time.Time         `db:"date_of_sign_up"   gorm:"column:date_of_sign_up;not null"`
	DelayInDays    int               `db:"delay_in_days"     gorm:"column:delay_in_days;not null;default:0"`
	PregSignup     bool              `db:"preg_signup"       gorm:"column:preg_signup;not null;default:false"`
	Cancelled      bool              `db:"cancelled"         gorm:"column:cancelled;not null;default:false"`
	MethodOfSignUp string            `db:"method_of_sign_up" gorm:"column:method_of_sign_up"`
	LastHeardFrom  *time.Time        `db:"last_heard_from"   gorm:"column:last_heard_from"`
	LastContacted  *time.Time        `db:"last_contacted"    gorm:"column:last_contacted"`
	TimeCreated    time.Time         `db:"time_created"      gorm:"column:time_created;autoCreateTime"`
	Demographics   datatypes.JSONMap `db:"demographics"      gorm:"column:demographics"`
}

func (ContactEntity) TableName() string {
	return "contacts"
}

type GroupEntity struct {
	ID   int64  `db:"id"   gorm:"primaryKey;autoIncrement;column:id"`
	Name string `db:"name" gorm:"column:name;not null;uniqueIndex"`
}

func (GroupEntity) TableName() string {
	return "groups"
}

type ContactGroupEntity struct {
	ContactID int64 `db:"contact_id" gorm:"column:contact_id;primaryKey"`
	GroupID   int64 `db:"group_id"   gorm:"column:group_id;primaryKey"`
}

func (ContactGroupEntity) TableName() string {
	return "contact_groups"
}

func toContactModel(e *ContactEntity) *model.Contact {
	if e == nil {
		return nil
	}
	return &model.Contact{
		ID:             e.ID,
		Name:           e.Name,
		PhoneNumber:    e.PhoneNumber,
		Language:       model.Language(e.Language),
		DateOfBirth:    e.DateOfBirth,
		DateOfSignUp:   e.DateOfSignUp,
		DelayInDays:    e.DelayInDays,
		PregSignup:     e.PregSignup,
		Cancelled:      e.Cancelled,
		MethodOfSignUp: e.MethodOfSignUp,
		LastHeardFrom:  e.LastHeardFrom,
		LastContacted:  e.LastContacted,
		TimeCreated:    e.TimeCreated,
		Demographics:   e.Demographics,
	}
}

func toContactModels(entities []*ContactEntity) []*model.Contact {
	if entities == nil {
		return nil
	}
	models := make([]*model.Contact, len(entities))
	for i, e := range entities {
		models[i] = toContactModel(e)
	}
	return models
}
