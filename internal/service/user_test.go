package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
)

type fakeUploader struct {
	url      string
	err      error
	username string
	body     string
	ct       string
}

func (f *fakeUploader) Upload(_ context.Context, username string, body io.Reader, contentType string) (string, error) {
	f.username = username
	f.ct = contentType
	b, _ := io.ReadAll(body)
	f.body = string(b)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func TestGravatarURL(t *testing.T) {
	// gravatar hashes the lowercased, trimmed address, so these are all the
	// same image
	want := GravatarURL("a@x.com")
	for _, email := range []string{"A@X.COM", "  a@x.com  ", "a@X.com"} {
		if got := GravatarURL(email); got != want {
			t.Errorf("GravatarURL(%q) = %q, want %q", email, got, want)
		}
	}

	if !strings.HasPrefix(want, "https://www.gravatar.com/avatar/") {
		t.Errorf("GravatarURL() = %q, want a gravatar address", want)
	}
	if !strings.HasSuffix(want, "?d=identicon") {
		t.Errorf("GravatarURL() = %q, want the identicon fallback", want)
	}

	if other := GravatarURL("b@x.com"); other == want {
		t.Error("different emails must map to different avatars")
	}
}

func TestGetByUsername(t *testing.T) {
	stored := &models.User{ID: 1, Username: "alice", Email: "a@x.com"}
	repo := &mockUserRepository{
		findByUsernameFunc: func(_ context.Context, username string) (*models.User, error) {
			if username == "alice" {
				return stored, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	svc := NewUserService(repo, &fakeUploader{})

	user, err := svc.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if user.ID != 1 {
		t.Errorf("user.ID = %d, want 1", user.ID)
	}

	if _, err := svc.GetByUsername(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateAvatar(t *testing.T) {
	var savedEmail, savedURL string
	repo := &mockUserRepository{
		updateAvatarFunc: func(_ context.Context, email, url string) error {
			savedEmail, savedURL = email, url
			return nil
		},
	}
	uploader := &fakeUploader{url: "https://cdn.example.com/avatars/alice"}
	svc := NewUserService(repo, uploader)

	user := &models.User{ID: 1, Username: "alice", Email: "a@x.com"}
	updated, err := svc.UpdateAvatar(context.Background(), user, strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("UpdateAvatar() error = %v", err)
	}

	if uploader.username != "alice" || uploader.body != "png-bytes" || uploader.ct != "image/png" {
		t.Errorf("uploader called with (%q, %q, %q)", uploader.username, uploader.body, uploader.ct)
	}
	if savedEmail != "a@x.com" || savedURL != uploader.url {
		t.Errorf("persisted (%q, %q), want (%q, %q)", savedEmail, savedURL, "a@x.com", uploader.url)
	}
	if updated.Avatar == nil || *updated.Avatar != uploader.url {
		t.Errorf("user.Avatar = %v, want %q", updated.Avatar, uploader.url)
	}
}

func TestUpdateAvatarUploadFailure(t *testing.T) {
	repo := &mockUserRepository{
		updateAvatarFunc: func(context.Context, string, string) error {
			t.Error("avatar must not be persisted when the upload fails")
			return nil
		},
	}
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	svc := NewUserService(repo, uploader)

	user := &models.User{ID: 1, Username: "alice", Email: "a@x.com"}
	if _, err := svc.UpdateAvatar(context.Background(), user, strings.NewReader("x"), "image/png"); err == nil {
		t.Fatal("UpdateAvatar() expected an error")
	}
	if user.Avatar != nil {
		t.Error("user.Avatar must stay unset after a failed upload")
	}
}
