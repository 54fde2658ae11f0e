package service

import (
	"context"
	"errors"
	"time"

	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
)

// ErrContactNotFound means the contact does not exist or belongs to another
// user.
var ErrContactNotFound = errors.New("contact not found")

// upcomingBirthdayWindow is how far ahead the birthday lookup scans.
const upcomingBirthdayWindow = 7

// ContactInput carries the writable fields of a contact.
type ContactInput struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday"`
	ExtraInfo *string   `json:"extra_info"`
}

// ContactService exposes the owner-scoped address book operations.
type ContactService interface {
	List(ctx context.Context, user *models.User, skip, limit int) ([]models.Contact, error)
	Get(ctx context.Context, user *models.User, contactID int64) (*models.Contact, error)
	Create(ctx context.Context, user *models.User, input ContactInput) (*models.Contact, error)
	Update(ctx context.Context, user *models.User, contactID int64, input ContactInput) (*models.Contact, error)
	Delete(ctx context.Context, user *models.User, contactID int64) (*models.Contact, error)
	Search(ctx context.Context, user *models.User, filters repository.ContactSearch) ([]models.Contact, error)
	UpcomingBirthdays(ctx context.Context, user *models.User) ([]models.Contact, error)
}

type contactService struct {
	contacts repository.ContactRepository
	now      func() time.Time
}

// NewContactService creates a new ContactService instance.
func NewContactService(contacts repository.ContactRepository) ContactService {
	return &contactService{contacts: contacts, now: time.Now}
}

func (s *contactService) List(ctx context.Context, user *models.User, skip, limit int) ([]models.Contact, error) {
	return s.contacts.List(ctx, user.ID, skip, limit)
}

func (s *contactService) Get(ctx context.Context, user *models.User, contactID int64) (*models.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, user.ID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Create(ctx context.Context, user *models.User, input ContactInput) (*models.Contact, error) {
	contact := &models.Contact{
		UserID:    user.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
		ExtraInfo: input.ExtraInfo,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, user *models.User, contactID int64, input ContactInput) (*models.Contact, error) {
	contact, err := s.Get(ctx, user, contactID)
	if err != nil {
		return nil, err
	}

	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.Birthday = input.Birthday
	contact.ExtraInfo = input.ExtraInfo

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, user *models.User, contactID int64) (*models.Contact, error) {
	contact, err := s.Get(ctx, user, contactID)
	if err != nil {
		return nil, err
	}

	if err := s.contacts.Delete(ctx, user.ID, contactID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Search(ctx context.Context, user *models.User, filters repository.ContactSearch) ([]models.Contact, error) {
	return s.contacts.Search(ctx, user.ID, filters)
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, user *models.User) ([]models.Contact, error) {
	return s.contacts.UpcomingBirthdays(ctx, user.ID, s.now(), upcomingBirthdayWindow)
}
