package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addrbook/contacts-api/internal/middleware"
	"github.com/addrbook/contacts-api/internal/service"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateAvatar uploads a new avatar image and stores its URL on the user.
// Admin only; the route wiring enforces the role.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	updated, err := h.userService.UpdateAvatar(c.Request.Context(), user, file, contentType)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
