package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
)

type mockContactRepository struct {
	listFunc              func(ctx context.Context, userID int64, skip, limit int) ([]models.Contact, error)
	findByIDFunc          func(ctx context.Context, userID, contactID int64) (*models.Contact, error)
	createFunc            func(ctx context.Context, contact *models.Contact) error
	updateFunc            func(ctx context.Context, contact *models.Contact) error
	deleteFunc            func(ctx context.Context, userID, contactID int64) error
	searchFunc            func(ctx context.Context, userID int64, filters repository.ContactSearch) ([]models.Contact, error)
	upcomingBirthdaysFunc func(ctx context.Context, userID int64, from time.Time, days int) ([]models.Contact, error)
}

func (m *mockContactRepository) List(ctx context.Context, userID int64, skip, limit int) ([]models.Contact, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, skip, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContactRepository) FindByID(ctx context.Context, userID, contactID int64) (*models.Contact, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, userID, contactID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, contact)
	}
	return errors.New("not implemented")
}

func (m *mockContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, contact)
	}
	return errors.New("not implemented")
}

func (m *mockContactRepository) Delete(ctx context.Context, userID, contactID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, contactID)
	}
	return errors.New("not implemented")
}

func (m *mockContactRepository) Search(ctx context.Context, userID int64, filters repository.ContactSearch) ([]models.Contact, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, userID, filters)
	}
	return nil, errors.New("not implemented")
}

func (m *mockContactRepository) UpcomingBirthdays(ctx context.Context, userID int64, from time.Time, days int) ([]models.Contact, error) {
	if m.upcomingBirthdaysFunc != nil {
		return m.upcomingBirthdaysFunc(ctx, userID, from, days)
	}
	return nil, errors.New("not implemented")
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "alice", Email: "a@x.com", Confirmed: true, Role: models.RoleUser}
}

func TestContactCreateScopesToOwner(t *testing.T) {
	var created *models.Contact
	repo := &mockContactRepository{
		createFunc: func(_ context.Context, contact *models.Contact) error {
			contact.ID = 42
			created = contact
			return nil
		},
	}
	svc := NewContactService(repo)

	extra := "likes tea"
	input := ContactInput{
		FirstName: "Bob",
		LastName:  "Smith",
		Email:     "bob@x.com",
		Phone:     "+371000000",
		Birthday:  time.Date(1990, time.May, 4, 0, 0, 0, 0, time.UTC),
		ExtraInfo: &extra,
	}

	contact, err := svc.Create(context.Background(), testUser(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created == nil {
		t.Fatal("repository Create was not called")
	}
	if contact.UserID != 7 {
		t.Errorf("contact.UserID = %d, want the caller's id 7", contact.UserID)
	}
	if contact.ID != 42 {
		t.Errorf("contact.ID = %d, want the persisted id 42", contact.ID)
	}
	if contact.FirstName != "Bob" || contact.LastName != "Smith" {
		t.Errorf("contact = %+v, want input fields copied", contact)
	}
	if contact.ExtraInfo == nil || *contact.ExtraInfo != "likes tea" {
		t.Errorf("extra info = %v, want %q", contact.ExtraInfo, "likes tea")
	}
}

func TestContactGetNotFound(t *testing.T) {
	repo := &mockContactRepository{
		findByIDFunc: func(context.Context, int64, int64) (*models.Contact, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewContactService(repo)

	if _, err := svc.Get(context.Background(), testUser(), 99); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("Get() error = %v, want ErrContactNotFound", err)
	}
}

func TestContactUpdateReplacesAllFields(t *testing.T) {
	stored := &models.Contact{
		ID: 3, UserID: 7,
		FirstName: "Old", LastName: "Name",
		Email: "old@x.com", Phone: "111",
	}
	var saved *models.Contact
	repo := &mockContactRepository{
		findByIDFunc: func(_ context.Context, userID, contactID int64) (*models.Contact, error) {
			if userID != 7 || contactID != 3 {
				return nil, repository.ErrNotFound
			}
			copied := *stored
			return &copied, nil
		},
		updateFunc: func(_ context.Context, contact *models.Contact) error {
			saved = contact
			return nil
		},
	}
	svc := NewContactService(repo)

	input := ContactInput{FirstName: "New", LastName: "Name", Email: "new@x.com"}
	contact, err := svc.Update(context.Background(), testUser(), 3, input)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if saved == nil {
		t.Fatal("repository Update was not called")
	}
	if contact.FirstName != "New" || contact.Email != "new@x.com" {
		t.Errorf("contact = %+v, want updated fields", contact)
	}
	// fields absent from the input are cleared, not preserved
	if contact.Phone != "" {
		t.Errorf("phone = %q, want it replaced by the empty input value", contact.Phone)
	}
	if contact.ID != 3 || contact.UserID != 7 {
		t.Errorf("identity changed: %+v", contact)
	}
}

func TestContactUpdateNotFound(t *testing.T) {
	repo := &mockContactRepository{
		findByIDFunc: func(context.Context, int64, int64) (*models.Contact, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewContactService(repo)

	if _, err := svc.Update(context.Background(), testUser(), 3, ContactInput{FirstName: "X", LastName: "Y"}); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("Update() error = %v, want ErrContactNotFound", err)
	}
}

func TestContactDeleteReturnsLastState(t *testing.T) {
	stored := &models.Contact{ID: 3, UserID: 7, FirstName: "Bob", LastName: "Smith"}
	deleted := false
	repo := &mockContactRepository{
		findByIDFunc: func(context.Context, int64, int64) (*models.Contact, error) {
			copied := *stored
			return &copied, nil
		},
		deleteFunc: func(_ context.Context, userID, contactID int64) error {
			if userID != 7 || contactID != 3 {
				t.Errorf("Delete called with (%d, %d), want (7, 3)", userID, contactID)
			}
			deleted = true
			return nil
		},
	}
	svc := NewContactService(repo)

	contact, err := svc.Delete(context.Background(), testUser(), 3)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("repository Delete was not called")
	}
	if contact.FirstName != "Bob" {
		t.Errorf("Delete() returned %+v, want the removed contact", contact)
	}
}

func TestContactDeleteNotFound(t *testing.T) {
	repo := &mockContactRepository{
		findByIDFunc: func(context.Context, int64, int64) (*models.Contact, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewContactService(repo)

	if _, err := svc.Delete(context.Background(), testUser(), 3); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("Delete() error = %v, want ErrContactNotFound", err)
	}
}

func TestUpcomingBirthdaysUsesWindow(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	var gotFrom time.Time
	var gotDays int
	repo := &mockContactRepository{
		upcomingBirthdaysFunc: func(_ context.Context, userID int64, from time.Time, days int) ([]models.Contact, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			gotFrom, gotDays = from, days
			return []models.Contact{{ID: 1}}, nil
		},
	}

	svc := NewContactService(repo).(*contactService)
	svc.now = func() time.Time { return now }

	contacts, err := svc.UpcomingBirthdays(context.Background(), testUser())
	if err != nil {
		t.Fatalf("UpcomingBirthdays() error = %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("got %d contacts, want 1", len(contacts))
	}
	if !gotFrom.Equal(now) {
		t.Errorf("from = %v, want %v", gotFrom, now)
	}
	if gotDays != upcomingBirthdayWindow {
		t.Errorf("days = %d, want %d", gotDays, upcomingBirthdayWindow)
	}
}

func TestContactSearchPassesFilters(t *testing.T) {
	var gotFilters repository.ContactSearch
	repo := &mockContactRepository{
		searchFunc: func(_ context.Context, userID int64, filters repository.ContactSearch) ([]models.Contact, error) {
			gotFilters = filters
			return nil, nil
		},
	}
	svc := NewContactService(repo)

	filters := repository.ContactSearch{FirstName: "Bob", Email: "bob@x.com"}
	if _, err := svc.Search(context.Background(), testUser(), filters); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotFilters != filters {
		t.Errorf("filters = %+v, want %+v", gotFilters, filters)
	}
}
