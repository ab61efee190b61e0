package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubSessions struct {
	created []string
	revoked []string
	err     error
}

func (s *stubSessions) Create(ctx context.Context, accessID string) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	if s.err != nil {
		return s.err
	}
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "breaddesk-test",
		ExpirationMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           7,
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: newTestUser(t, "s3cret")},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	res, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Admin@Example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.User == nil || res.User.ID != 7 {
		t.Fatal("expected user in response")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session registered, got %d", len(sessions.created))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: newTestUser(t, "s3cret")},
		SessionManager: &stubSessions{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{err: gorm.ErrRecordNotFound},
		SessionManager: &stubSessions{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRepoFailure(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{err: errors.New("connection reset")},
		SessionManager: &stubSessions{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: newTestUser(t, "s3cret")},
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-123" {
		t.Fatalf("expected jti revoked, got %v", sessions.revoked)
	}

	if err := svc.Logout(context.Background(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for blank jti, got %v", err)
	}
}
