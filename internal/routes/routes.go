// Package routes defines the HTTP routes for the contacts API.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/addrbook/contacts-api/internal/config"
	"github.com/addrbook/contacts-api/internal/handlers"
	"github.com/addrbook/contacts-api/internal/middleware"
	"github.com/addrbook/contacts-api/internal/repository"
	"github.com/addrbook/contacts-api/internal/service"
)

// Deps bundles everything route wiring needs.
type Deps struct {
	Config   config.Config
	Log      zerolog.Logger
	Tokens   service.TokenService
	Users    repository.UserRepository
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Contacts *handlers.ContactHandler
	Health   *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, d Deps) {
	router.Use(middleware.RequestLog(d.Log))

	router.GET("/health", d.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGuard := middleware.RequireAuth(d.Tokens, d.Users)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.GET("/confirmed_email/:token", d.Auth.ConfirmEmail)
		auth.POST("/request_email", d.Auth.RequestEmail)
		auth.POST("/forgot-password", d.Auth.ForgotPassword)
		auth.GET("/reset-password", d.Auth.ResetPasswordForm)
		auth.POST("/reset-password", d.Auth.ResetPassword)
	}

	users := router.Group("/api/users", authGuard)
	{
		meLimiter := middleware.NewRateLimiter(d.Config.MeRateLimitPerMinute)
		users.GET("/me", meLimiter.Middleware(), d.User.Me)
		users.PATCH("/avatar", middleware.RequireAdmin(), d.User.UpdateAvatar)
	}

	contacts := router.Group("/api/contacts", authGuard)
	{
		contacts.GET("", d.Contacts.List)
		contacts.GET("/search", d.Contacts.Search)
		contacts.GET("/upcoming_birthday", d.Contacts.UpcomingBirthdays)
		contacts.GET("/:id", d.Contacts.Get)
		contacts.POST("", d.Contacts.Create)
		contacts.PUT("/:id", d.Contacts.Update)
		contacts.DELETE("/:id", d.Contacts.Delete)
	}
}
