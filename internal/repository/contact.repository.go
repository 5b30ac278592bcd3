package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cshealth/reminder-gateway/internal/model"
	"github.com/cshealth/reminder-gateway/pkg/pg"
)

var (
	ErrContactNotFound = errors.New("contact not found")
)

type ContactRepository struct {
	*pg.DB
}

func NewContactRepository(db *pg.DB) *ContactRepository {
	return &ContactRepository{
		db,
	}
}

// UpsertBy creates or updates on the natural key (name, phone_number). All
// other fields are taken from the request; the cancelled flag is left alone
// because it is monotonic. Returns whether a new contact was created.
func (r *ContactRepository) UpsertBy(ctx context.Context, p model.ContactCreateRequest) (*model.Contact, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}

	phone := CanonicalizePhone(p.PhoneNumber)
	lang := p.Language
	if lang == "" {
		lang = model.LanguageEnglish
	}

	var created bool
	var out *model.Contact
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		q := r.Handle(ctx)
		// sqlite has no row locks; the unique index still catches races there.
		if q.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var entity ContactEntity
		err := q.
			Where("name = ? AND phone_number = ?", p.Name, phone).
			First(&entity).
			Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			entity = ContactEntity{
				Name:           p.Name,
				PhoneNumber:    phone,
				Language:       string(lang),
				DateOfBirth:    p.DateOfBirth,
				DateOfSignUp:   p.DateOfSignUp,
				DelayInDays:    p.DelayInDays,
				PregSignup:     p.DateOfBirth.After(p.DateOfSignUp),
				MethodOfSignUp: p.MethodOfSignUp,
			}
			if err := r.Handle(ctx).Create(&entity).Error; err != nil {
				return err
			}
			created = true
			out = toContactModel(&entity)
			return nil
		}
		if err != nil {
			return err
		}

		entity.Language = string(lang)
		entity.DateOfBirth = p.DateOfBirth
		entity.DateOfSignUp = p.DateOfSignUp
		entity.DelayInDays = p.DelayInDays
		entity.PregSignup = p.DateOfBirth.After(p.DateOfSignUp)
		entity.MethodOfSignUp = p.MethodOfSignUp
		if err := r.Handle(ctx).Save(&entity).Error; err != nil {
			return err
		}
		out = toContactModel(&entity)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// CancelByPhone cancels every contact registered at the number; one phone may
// carry several children and STOP carries no child selector. Returns how many
// rows flipped.
func (r *ContactRepository) CancelByPhone(ctx context.Context, phone string) (int64, error) {
	result := r.Handle(ctx).
		Model(&ContactEntity{}).
		Where("phone_number = ? AND cancelled = ?", CanonicalizePhone(phone), false).
		Update("cancelled", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AllActive returns every contact that has not been cancelled, in creation
// order so remind-all runs are deterministic.
func (r *ContactRepository) AllActive(ctx context.Context) ([]*model.Contact, error) {
	var entities []*ContactEntity
	err := r.Handle(ctx).
		Where("cancelled = ?", false).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toContactModels(entities), nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	var entity ContactEntity
	err := r.Handle(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return toContactModel(&entity), nil
}

// FindByPhone returns every contact at the number, newest first.
func (r *ContactRepository) FindByPhone(ctx context.Context, phone string) ([]*model.Contact, error) {
	var entities []*ContactEntity
	err := r.Handle(ctx).
		Where("phone_number = ?", CanonicalizePhone(phone)).
		Order("id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toContactModels(entities), nil
}

// AddToGroup puts the contact into the named group, creating the group on
// first reference. Re-adding is a no-op.
func (r *ContactRepository) AddToGroup(ctx context.Context, contactID int64, groupName string) error {
	var group GroupEntity
	err := r.Handle(ctx).
		Where(GroupEntity{Name: groupName}).
		FirstOrCreate(&group).
		Error
	if err != nil {
		return err
	}

	membership := ContactGroupEntity{ContactID: contactID, GroupID: group.ID}
	return r.Handle(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership).
		Error
}

// GroupsOf lists the names of the groups the contact belongs to.
func (r *ContactRepository) GroupsOf(ctx context.Context, contactID int64) ([]string, error) {
	var names []string
	err := r.Handle(ctx).
		Model(&GroupEntity{}).
		Joins("JOIN contact_groups ON contact_groups.group_id = groups.id").
		Where("contact_groups.contact_id = ?", contactID).
		Order("groups.name ASC").
		Pluck("groups.name", &names).
		Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *ContactRepository) UpdateLastContacted(ctx context.Context, contactID int64, at time.Time) error {
	return r.Handle(ctx).
		Model(&ContactEntity{}).
		Where("id = ?", contactID).
		Update("last_contacted", at).
		Error
}

func (r *ContactRepository) UpdateLastHeardFrom(ctx context.Context, contactID int64, at time.Time) error {
	return r.Handle(ctx).
		Model(&ContactEntity{}).
		Where("id = ?", contactID).
		Update("last_heard_from", at).
		Error
}
