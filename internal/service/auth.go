// Package service implements the business logic of the contacts API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/addrbook/contacts-api/internal/config"
	"github.com/addrbook/contacts-api/internal/mail"
	"github.com/addrbook/contacts-api/internal/metrics"
	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
)

var (
	// ErrEmailTaken means a user with the given email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken means a user with the given username already exists.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials covers both unknown username and wrong password;
	// callers must not reveal which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified means the credentials were correct but the account
	// email is unconfirmed.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrVerification covers a bad or expired confirmation token, or a token
	// for an unknown user.
	ErrVerification = errors.New("verification failed")
	// ErrInvalidResetToken means a reset token failed signature or expiry
	// checks.
	ErrInvalidResetToken = errors.New("invalid reset token")
	// ErrUserNotFound means the addressed user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Status messages returned by the idempotent flows.
const (
	MsgEmailVerified    = "Email Verified"
	MsgAlreadyConfirmed = "Your email is already confirmed"
	MsgCheckYourEmail   = "Please check your email for verification"
	MsgResetEmailSent   = "Password reset email sent"
	MsgPasswordReset    = "Password successfully reset"
)

// LoginResponse carries a freshly issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Mailer enqueues mail for background delivery. Satisfied by
// *mail.Dispatcher.
type Mailer interface {
	Enqueue(msg mail.Message)
}

// AuthService orchestrates registration and the credential lifecycle. It is
// the only component that makes security decisions; everything below it is
// mechanism.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ConfirmEmail(ctx context.Context, token string) (string, error)
	RequestVerification(ctx context.Context, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

type authService struct {
	users   repository.UserRepository
	tokens  TokenService
	claims  ResetClaimStore
	mailer  Mailer
	cfg     config.Config
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewAuthService creates a new AuthService instance. The metrics argument
// may be nil.
func NewAuthService(
	users repository.UserRepository,
	tokens TokenService,
	claims ResetClaimStore,
	mailer Mailer,
	cfg config.Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) AuthService {
	return &authService{
		users:   users,
		tokens:  tokens,
		claims:  claims,
		mailer:  mailer,
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

// Register creates an unconfirmed user and enqueues a verification email.
// The email is checked before the username, and the mail send never blocks
// or fails the registration.
func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		s.countRegistration(metrics.OutcomeFailure)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		s.countRegistration(metrics.OutcomeFailure)
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	avatar := GravatarURL(email)
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Confirmed:    false,
		Avatar:       &avatar,
		Role:         models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// a racing registration may hit the uniqueness constraint after the
		// pre-checks passed; exactly one caller wins
		if errors.Is(err, repository.ErrDuplicate) {
			s.countRegistration(metrics.OutcomeFailure)
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.enqueueVerificationMail(user)
	s.countRegistration(metrics.OutcomeSuccess)

	return user, nil
}

// Login validates credentials and issues a short-lived access token.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countLogin(metrics.OutcomeFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.countLogin(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	if !user.Confirmed {
		s.countLogin(metrics.OutcomeFailure)
		return nil, ErrEmailNotVerified
	}

	token, err := s.tokens.IssueAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.countLogin(metrics.OutcomeSuccess)
	return &LoginResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// ConfirmEmail redeems a verification token. Confirming an already confirmed
// address succeeds with a distinct message.
func (s *authService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Decode(token, TokenKindVerifyEmail)
	if err != nil {
		return "", ErrVerification
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrVerification
		}
		return "", err
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}

	if err := s.users.MarkConfirmed(ctx, user.Email); err != nil {
		return "", err
	}

	return MsgEmailVerified, nil
}

// RequestVerification re-sends the verification email unless the address is
// already confirmed.
func (s *authService) RequestVerification(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}

	s.enqueueVerificationMail(user)
	return MsgCheckYourEmail, nil
}

// ForgotPassword issues a reset token, binds it to a snapshot of the user in
// the claim store and enqueues the reset email. The acknowledgement does not
// depend on mail delivery.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	token, err := s.tokens.IssueResetToken(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	snapshot := UserSnapshot{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
		Role:      user.Role,
	}
	if err := s.claims.Put(ctx, token, snapshot, s.cfg.ResetClaimTTL); err != nil {
		return "", fmt.Errorf("store reset claim: %w", err)
	}

	resetLink := fmt.Sprintf("%s/api/auth/reset-password?token=%s", s.cfg.BaseURL, token)
	s.enqueueMail(mail.Message{
		Template: mail.TemplateResetPassword,
		To:       user.Email,
		Subject:  "Reset your password",
		Data: map[string]any{
			"Username":  user.Username,
			"ResetLink": resetLink,
		},
	})

	return MsgResetEmailSent, nil
}

// ResetPassword redeems a reset claim and replaces the user's password hash.
// The token signature and the claim's TTL are enforced independently, and
// redemption consumes the claim atomically: a second call with the same token
// fails even while the signature is still valid.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if _, err := s.tokens.Decode(token, TokenKindResetClaim); err != nil {
		s.countReset(metrics.OutcomeFailure)
		return "", ErrInvalidResetToken
	}

	snapshot, err := s.claims.Redeem(ctx, token)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			s.countReset(metrics.OutcomeFailure)
			return "", ErrClaimNotFound
		}
		return "", err
	}

	// re-resolve by the stored email rather than trusting the token twice
	user, err := s.users.FindByEmail(ctx, snapshot.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.countReset(metrics.OutcomeFailure)
			return "", ErrUserNotFound
		}
		return "", err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.Email, hash); err != nil {
		return "", err
	}

	s.countReset(metrics.OutcomeSuccess)
	return MsgPasswordReset, nil
}

func (s *authService) enqueueVerificationMail(user *models.User) {
	token, err := s.tokens.IssueVerifyToken(user.Email)
	if err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Msg("failed to issue verification token")
		return
	}

	confirmLink := fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.cfg.BaseURL, token)
	s.enqueueMail(mail.Message{
		Template: mail.TemplateVerifyEmail,
		To:       user.Email,
		Subject:  "Confirm your email",
		Data: map[string]any{
			"Username":    user.Username,
			"ConfirmLink": confirmLink,
		},
	})
}

func (s *authService) enqueueMail(msg mail.Message) {
	s.mailer.Enqueue(msg)
	if s.metrics != nil {
		s.metrics.MailEnqueued.Inc()
	}
}

func (s *authService) countRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (s *authService) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues(outcome).Inc()
	}
}

func (s *authService) countReset(outcome string) {
	if s.metrics != nil {
		s.metrics.PasswordResets.WithLabelValues(outcome).Inc()
	}
}
