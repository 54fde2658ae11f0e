package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/addrbook/contacts-api/internal/models"
)

// ContactSearch holds optional search filters combined with OR semantics.
type ContactSearch struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactRepository defines owner-scoped contact storage operations. Every
// query is filtered by the owning user's id; a contact belonging to another
// user is indistinguishable from a missing one.
type ContactRepository interface {
	List(ctx context.Context, userID int64, skip, limit int) ([]models.Contact, error)
	FindByID(ctx context.Context, userID, contactID int64) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, userID, contactID int64) error
	Search(ctx context.Context, userID int64, filters ContactSearch) ([]models.Contact, error)
	UpcomingBirthdays(ctx context.Context, userID int64, from time.Time, days int) ([]models.Contact, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository instance.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) List(ctx context.Context, userID int64, skip, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Offset(skip).Limit(limit).
		Order("id").
		Find(&contacts).Error
	if err != nil {
		return nil, translate(err)
	}
	return contacts, nil
}

func (r *contactRepository) FindByID(ctx context.Context, userID, contactID int64) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error
	if err != nil {
		return nil, translate(err)
	}
	return &contact, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Save(contact).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, userID, contactID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		Delete(&models.Contact{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contactRepository) Search(ctx context.Context, userID int64, filters ContactSearch) ([]models.Contact, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	cond := r.db.Session(&gorm.Session{NewDB: true})
	matched := false
	if filters.FirstName != "" {
		cond = cond.Or("first_name = ?", filters.FirstName)
		matched = true
	}
	if filters.LastName != "" {
		cond = cond.Or("last_name = ?", filters.LastName)
		matched = true
	}
	if filters.Email != "" {
		cond = cond.Or("email = ?", filters.Email)
		matched = true
	}
	if matched {
		q = q.Where(cond)
	}

	var contacts []models.Contact
	if err := q.Order("id").Find(&contacts).Error; err != nil {
		return nil, translate(err)
	}
	return contacts, nil
}

func (r *contactRepository) UpcomingBirthdays(ctx context.Context, userID int64, from time.Time, days int) ([]models.Contact, error) {
	until := from.AddDate(0, 0, days)

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from.Month() == until.Month() {
		q = q.Where(
			"EXTRACT(MONTH FROM birthday) = ? AND EXTRACT(DAY FROM birthday) BETWEEN ? AND ?",
			int(from.Month()), from.Day(), until.Day(),
		)
	} else {
		// window spans a month boundary
		q = q.Where(`(EXTRACT(MONTH FROM birthday) = ? AND EXTRACT(DAY FROM birthday) >= ?)
			OR (EXTRACT(MONTH FROM birthday) = ? AND EXTRACT(DAY FROM birthday) <= ?)`,
			int(from.Month()), from.Day(),
			int(until.Month()), until.Day(),
		)
	}

	var contacts []models.Contact
	err := q.Order("id").Find(&contacts).Error
	if err != nil {
		return nil, translate(err)
	}
	return contacts, nil
}
