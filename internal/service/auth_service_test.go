package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type mockSessionStore struct {
	revoked map[string]time.Duration
}

func (m *mockSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if m.revoked == nil {
		m.revoked = map[string]time.Duration{}
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *mockSessionStore) IsRevoked(ctx context.Context, tokenID string) bool {
	_, ok := m.revoked[tokenID]
	return ok
}

type mockLoginRecorder struct{ outcomes []string }

func (m *mockLoginRecorder) RecordLogin(outcome string) { m.outcomes = append(m.outcomes, outcome) }

func newAuthService(t *testing.T, cfg AuthConfig) (*AuthService, *mockSessionStore, *mockLoginRecorder) {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
	sessions := &mockSessionStore{}
	recorder := &mockLoginRecorder{}
	return NewAuthService(sessions, recorder, nil, nil, cfg), sessions, recorder
}

func TestAuthServiceLoginPlainPassword(t *testing.T) {
	svc, _, recorder := newAuthService(t, AuthConfig{Password: "s3cret", TTL: time.Hour})

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.Admin.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Name)
	assert.Equal(t, models.AdminInfo{ID: "admin", Name: "admin"}, svc.Admin(claims))
	assert.Equal(t, []string{"success"}, recorder.outcomes)
}

func TestAuthServiceLoginBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, _, _ := newAuthService(t, AuthConfig{Password: "plain", PasswordHash: string(hash)})

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "hashed-pass"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "plain"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginRejects(t *testing.T) {
	svc, _, recorder := newAuthService(t, AuthConfig{Password: "s3cret"})
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Username: "root", Password: "s3cret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "admin"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Equal(t, []string{"failure", "failure"}, recorder.outcomes)

	unset, _, _ := newAuthService(t, AuthConfig{})
	_, err = unset.Login(ctx, models.LoginRequest{Username: "admin", Password: "anything"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceValidateRejectsTampering(t *testing.T) {
	svc, _, _ := newAuthService(t, AuthConfig{Password: "s3cret"})
	other, _, _ := newAuthService(t, AuthConfig{Password: "s3cret", Secret: "other-secret"})

	session, err := other.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateExpired(t *testing.T) {
	svc, _, _ := newAuthService(t, AuthConfig{Password: "s3cret", TTL: time.Minute})
	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Validate(context.Background(), session.Token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "session expired", appErr.Message)
}

func TestAuthServiceLogoutRevokes(t *testing.T) {
	svc, sessions, _ := newAuthService(t, AuthConfig{Password: "s3cret", TTL: time.Hour})
	ctx := context.Background()

	session, err := svc.Login(ctx, models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	claims, err := svc.Validate(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	require.Contains(t, sessions.revoked, claims.ID)
	assert.Greater(t, sessions.revoked[claims.ID], 59*time.Minute)

	_, err = svc.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
