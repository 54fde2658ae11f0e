package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates what a token may be used for. A token issued for
// one purpose is never accepted by a different flow.
type TokenKind string

// Token kinds understood by the codec.
const (
	TokenKindAccess      TokenKind = "access"
	TokenKindVerifyEmail TokenKind = "verify-email"
	TokenKindResetClaim  TokenKind = "reset-claim"
)

var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for bad signatures, malformed tokens and
	// kind mismatches.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenClaims are the claims carried by every token this service issues.
type TokenClaims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, expiring tokens.
type TokenService interface {
	IssueAccessToken(username string) (string, error)
	IssueVerifyToken(email string) (string, error)
	IssueResetToken(email string) (string, error)
	Decode(token string, kind TokenKind) (*TokenClaims, error)
	AccessTokenTTL() time.Duration
}

type tokenService struct {
	secret       []byte
	accessExpiry time.Duration
	verifyExpiry time.Duration
	resetExpiry  time.Duration
	now          func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string, accessExpiry, verifyExpiry, resetExpiry time.Duration) TokenService {
	return &tokenService{
		secret:       []byte(secret),
		accessExpiry: accessExpiry,
		verifyExpiry: verifyExpiry,
		resetExpiry:  resetExpiry,
		now:          time.Now,
	}
}

func (s *tokenService) IssueAccessToken(username string) (string, error) {
	return s.issue(TokenKindAccess, username, s.accessExpiry)
}

func (s *tokenService) IssueVerifyToken(email string) (string, error) {
	return s.issue(TokenKindVerifyEmail, email, s.verifyExpiry)
}

func (s *tokenService) IssueResetToken(email string) (string, error) {
	return s.issue(TokenKindResetClaim, email, s.resetExpiry)
}

func (s *tokenService) AccessTokenTTL() time.Duration {
	return s.accessExpiry
}

func (s *tokenService) issue(kind TokenKind, subject string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode verifies the signature and expiry of a token and checks that it was
// issued for the expected kind. Expired tokens are reported separately from
// invalid ones; callers decide whether to distinguish them.
func (s *tokenService) Decode(tokenString string, kind TokenKind) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
