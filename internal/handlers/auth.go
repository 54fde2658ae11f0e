// Package handlers contains the HTTP request handlers for the contacts API.
package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addrbook/contacts-api/internal/service"
)

// AuthHandler handles registration and credential-lifecycle requests.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest carries a bare email address.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries a reset token and the replacement password.
// Accepted both as JSON and as the POST body of the HTML reset form.
type ResetPasswordRequest struct {
	Token       string `json:"token" form:"token" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=6"`
}

// Register creates a new unconfirmed user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, "A user with this email already exists")
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusConflict, "A user with this username already exists")
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and returns a bearer access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.Header("WWW-Authenticate", "Bearer")
			respondError(c, http.StatusUnauthorized, "Incorrect username or password")
		case errors.Is(err, service.ErrEmailNotVerified):
			respondError(c, http.StatusUnauthorized, "Email address not verified")
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmEmail redeems an email verification token from the mailed link.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	msg, err := h.authService.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrVerification) {
			respondError(c, http.StatusBadRequest, "Verification error")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// RequestEmail re-sends the verification email.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.authService.RequestVerification(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User with this email does not exist")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ForgotPassword starts the password reset flow.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User with this email does not exist")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

var resetFormTemplate = template.Must(template.New("reset_form").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 24rem; margin: 4rem auto;">
  <h2>Choose a new password</h2>
  <form method="POST" action="/api/auth/reset-password">
    <input type="hidden" name="token" value="{{.Token}}">
    <p><input type="password" name="new_password" placeholder="New password" required minlength="6"></p>
    <p><button type="submit">Reset password</button></p>
  </form>
</body>
</html>
`))

// ResetPasswordForm serves the HTML form linked from the reset email.
func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = resetFormTemplate.Execute(c.Writer, gin.H{"Token": c.Query("token")})
}

// ResetPassword redeems a reset token and replaces the password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			respondError(c, http.StatusBadRequest, "Invalid or expired token")
		case errors.Is(err, service.ErrClaimNotFound):
			respondError(c, http.StatusBadRequest, "Token is invalid or expired")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
