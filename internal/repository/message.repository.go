package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/pkg/pg"
)

var (
	// ErrNotFound is returned when a message does not exist.
	ErrNotFound = errors.New("message not found")
)

// MessageRepository is the append-only message log. Rows are never updated
// except for the is_processed and sent_at flags.
type MessageRepository struct {
	*pg.DB
}

func NewMessageRepository(db *pg.DB) *MessageRepository {
	return &MessageRepository{
		db,
	}
}

// DedupKey is the idempotence key remind-all checks before sending:
// sha256(contact_id || yyyy-mm-dd || reminder_kind).
func DedupKey(contactID int64, day time.Time, kind model.ReminderKind) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%s%s", contactID, day.Format("2006-01-02"), kind)))
	return hex.EncodeToString(sum[:])
}

func (r *MessageRepository) RecordIncoming(ctx context.Context, contactID *int64, body string, receivedAt time.Time) (*model.Message, error) {
	entity := &MessageEntity{
		ContactID:  contactID,
		Direction:  string(model.DirectionIncoming),
		Body:       body,
		ReceivedAt: &receivedAt,
	}
	if err := r.Handle(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toMessageModel(entity), nil
}

// RecordOutgoing logs a sent message. sentAt is nil until the gateway
// acknowledged the submit; dedupKey is nil for anything that is not a
// scheduled reminder.
func (r *MessageRepository) RecordOutgoing(ctx context.Context, contactID *int64, body string, sentAt *time.Time, dedupKey *string) (*model.Message, error) {
	entity := &MessageEntity{
		ContactID: contactID,
		Direction: string(model.DirectionOutgoing),
		Body:      body,
		SentAt:    sentAt,
		DedupKey:  dedupKey,
	}
	if err := r.Handle(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toMessageModel(entity), nil
}

func (r *MessageRepository) MarkProcessed(ctx context.Context, id int64) error {
	result := r.Handle(ctx).
		Model(&MessageEntity{}).
		Where("id = ?", id).
		Update("is_processed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MessageRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	result := r.Handle(ctx).
		Model(&MessageEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"sent_at": at, "is_processed": true})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Seen reports whether an outgoing message with this dedup key was already
// logged; remind-all calls it before every send.
func (r *MessageRepository) Seen(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.Handle(ctx).
		Model(&MessageEntity{}).
		Where("dedup_key = ?", key).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MessageRepository) List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error) {
	q := r.Handle(ctx).Model(&MessageEntity{})

	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}
	if f.Direction != nil {
		q = q.Where("direction = ?", string(*f.Direction))
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "id"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*MessageEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toMessageModels(entities), total, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	var entity MessageEntity
	err := r.Handle(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toMessageModel(&entity), nil
}
