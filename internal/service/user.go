package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
)

// AvatarUploader stores an avatar image and returns its public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, username string, body io.Reader, contentType string) (string, error)
}

// UserService handles profile lookups and avatar updates.
type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateAvatar(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error)
}

type userService struct {
	users    repository.UserRepository
	uploader AvatarUploader
}

// NewUserService creates a new UserService instance.
func NewUserService(users repository.UserRepository, uploader AvatarUploader) UserService {
	return &userService{users: users, uploader: uploader}
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar uploads the image and persists the resulting URL on the user.
func (s *userService) UpdateAvatar(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error) {
	url, err := s.uploader.Upload(ctx, user.Username, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, user.Email, url); err != nil {
		return nil, err
	}

	user.Avatar = &url
	return user, nil
}

// GravatarURL computes the gravatar address for an email. Gravatar keys
// images by the md5 of the lowercased address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
