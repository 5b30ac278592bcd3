package repository

import (
	"time"

	"github.com/cshealth/reminder-gateway/internal/model"
)

type MessageEntity struct {
	ID          int64      `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	ContactID   *int64     `db:"contact_id"   gorm:"column:contact_id;index:idx_messages_contact_direction_received,priority:1"`
	Direction   string     `db:"direction"    gorm:"column:direction;not null;index:idx_messages_contact_direction_received,priority:2"`
	Body        string     `db:"body"         gorm:"column:body;not null"`
	ReceivedAt  *time.Time `db:"received_at"  gorm:"column:received_at;index:idx_messages_contact_direction_received,priority:3"`
	SentAt      *time.Time `db:"sent_at"      gorm:"column:sent_at"`
	IsProcessed bool       `db:"is_processed" gorm:"column:is_processed;not null;default:false"`
	DedupKey    *string    `db:"dedup_key"    gorm:"column:dedup_key;uniqueIndex"`
	CreatedAt   time.Time  `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (MessageEntity) TableName() string {
	return "messages"
}

func toMessageModel(e *MessageEntity) *model.Message {
	if e == nil {
		return nil
	}
	return &model.Message{
		ID:          e.ID,
		ContactID:   e.ContactID,
		Direction:   model.Direction(e.Direction),
		Body:        e.Body,
		ReceivedAt:  e.ReceivedAt,
		SentAt:      e.SentAt,
		IsProcessed: e.IsProcessed,
		DedupKey:    e.DedupKey,
		CreatedAt:   e.CreatedAt,
	}
}

func toMessageModels(entities []*MessageEntity) []*model.Message {
	if entities == nil {
		return nil
	}
	models := make([]*model.Message, len(entities))
	for i, e := range entities {
		models[i] = toMessageModel(e)
	}
	return models
}
