package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/addrbook/contacts-api/internal/middleware"
	"github.com/addrbook/contacts-api/internal/models"
)

type mockUserService struct {
	getByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	updateAvatarFunc  func(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error)
}

func (m *mockUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) UpdateAvatar(ctx context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error) {
	if m.updateAvatarFunc != nil {
		return m.updateAvatarFunc(ctx, user, body, contentType)
	}
	return nil, errors.New("not implemented")
}

func setupUserRouter(h *UserHandler, user *models.User) *gin.Engine {
	router := gin.New()
	inject := func(c *gin.Context) {
		if user != nil {
			middleware.SetCurrentUser(c, user)
		}
		c.Next()
	}
	router.GET("/api/users/me", inject, h.Me)
	router.PATCH("/api/users/avatar", inject, h.UpdateAvatar)
	return router
}

func TestMeHandler(t *testing.T) {
	router := setupUserRouter(NewUserHandler(&mockUserService{}), authedUser())

	w := doJSON(t, router, http.MethodGet, "/api/users/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want %q", user.Username, "alice")
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("profile response must not carry password material")
	}
}

func TestMeHandlerUnauthenticated(t *testing.T) {
	router := setupUserRouter(NewUserHandler(&mockUserService{}), nil)

	w := doJSON(t, router, http.MethodGet, "/api/users/me", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestUpdateAvatarHandler(t *testing.T) {
	avatar := "https://cdn.example.com/avatars/alice"
	svc := &mockUserService{
		updateAvatarFunc: func(_ context.Context, user *models.User, body io.Reader, contentType string) (*models.User, error) {
			b, _ := io.ReadAll(body)
			if string(b) != "png-bytes" {
				t.Errorf("body = %q, want the uploaded file", b)
			}
			if contentType != "image/png" {
				t.Errorf("content type = %q, want image/png", contentType)
			}
			updated := *user
			updated.Avatar = &avatar
			return &updated, nil
		},
	}
	router := setupUserRouter(NewUserHandler(svc), authedUser())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fh := textproto.MIMEHeader{}
	fh.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	fh.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(fh)
	if err != nil {
		t.Fatalf("Failed to create form part: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("Failed to write form part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if user.Avatar == nil || *user.Avatar != avatar {
		t.Errorf("avatar = %v, want %q", user.Avatar, avatar)
	}
}

func TestUpdateAvatarRequiresFile(t *testing.T) {
	router := setupUserRouter(NewUserHandler(&mockUserService{}), authedUser())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "file is required" {
		t.Errorf("error = %q, want %q", got, "file is required")
	}
}
