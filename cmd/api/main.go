// Package main is the entry point for the contacts API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/addrbook/contacts-api/internal/config"
	"github.com/addrbook/contacts-api/internal/handlers"
	"github.com/addrbook/contacts-api/internal/mail"
	"github.com/addrbook/contacts-api/internal/metrics"
	"github.com/addrbook/contacts-api/internal/repository"
	"github.com/addrbook/contacts-api/internal/routes"
	"github.com/addrbook/contacts-api/internal/service"
	"github.com/addrbook/contacts-api/pkg/database"
	"github.com/addrbook/contacts-api/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init mail sender")
	}
	dispatcher := mail.NewDispatcher(sender, log.Logger)
	defer dispatcher.Close()

	uploader, err := service.NewS3AvatarUploader(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init avatar uploader")
	}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	m := metrics.New()
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.VerifyTokenTTL, cfg.ResetTokenTTL)
	claims := service.NewResetClaimStore(redisClient)
	authService := service.NewAuthService(userRepo, tokens, claims, dispatcher, cfg, m, log.Logger)
	userService := service.NewUserService(userRepo, uploader)
	contactService := service.NewContactService(contactRepo)

	router := gin.New()
	router.Use(gin.Recovery())

	routes.Setup(router, routes.Deps{
		Config:   cfg,
		Log:      log.Logger,
		Tokens:   tokens,
		Users:    userRepo,
		Auth:     handlers.NewAuthHandler(authService),
		User:     handlers.NewUserHandler(userService),
		Contacts: handlers.NewContactHandler(contactService),
		Health:   handlers.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting contacts-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
