package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

const (
	adminSubject  = "admin"
	sessionIssuer = "school-results-api"
)

type sessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

type loginRecorder interface {
	RecordLogin(outcome string)
}

// AuthConfig defines the single admin credential and session signing.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// AuthService authenticates the administrator and issues signed session tokens.
type AuthService struct {
	sessions  sessionStore
	metrics   loginRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(sessions sessionStore, metrics loginRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &AuthService{sessions: sessions, metrics: metrics, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login checks the credential against configuration and returns a session.
// A bcrypt hash takes precedence over the plain password when both are set.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}
	if !s.checkCredential(req.Username, req.Password) {
		s.recordLogin("failure")
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}

	token, expiresAt, err := s.issue()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	s.recordLogin("success")
	return &models.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     models.AdminInfo{ID: adminSubject, Name: s.config.Username},
	}, nil
}

// Validate parses a session token and rejects expired or revoked ones.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "session expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	if s.sessions != nil && s.sessions.IsRevoked(ctx, claims.ID) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session revoked")
	}
	return claims, nil
}

// Logout revokes the session for the rest of its lifetime. Without a session
// store the token simply expires.
func (s *AuthService) Logout(ctx context.Context, claims *models.SessionClaims) error {
	if claims == nil || s.sessions == nil {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return appErrors.Internal(err, "failed to revoke session")
	}
	return nil
}

// Admin returns the identity carried by validated claims.
func (s *AuthService) Admin(claims *models.SessionClaims) models.AdminInfo {
	return models.AdminInfo{ID: claims.Subject, Name: claims.Name}
}

func (s *AuthService) checkCredential(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Username)) == 1
	var passOK bool
	switch {
	case s.config.PasswordHash != "":
		passOK = bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(password)) == nil
	case s.config.Password != "":
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	}
	return userOK && passOK && s.config.Username != ""
}

func (s *AuthService) issue() (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.TTL)
	claims := models.SessionClaims{
		Name: s.config.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   adminSubject,
			Issuer:    sessionIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(outcome)
	}
}
