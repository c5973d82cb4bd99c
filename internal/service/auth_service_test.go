package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"predictbattle/internal/repository"
)

func newTestAuthService() *AuthService {
	return NewAuthService(repository.NewMemoryUserRepo(), "test-secret", 24*time.Hour, []string{"admin", "moderator"})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("register should return a token")
	}
	if resp.User.IsGuest {
		t.Fatal("registered user should not be a guest")
	}

	claims, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("token should verify: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Username != "alice" {
		t.Fatal("claims should match the registered user")
	}

	login, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login should resolve the same account")
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ab", "password1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short username, got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
	if _, err := svc.Register(ctx, "the-admin-guy", "password1"); !errors.Is(err, ErrUsernameProhibited) {
		t.Fatalf("expected ErrUsernameProhibited, got %v", err)
	}

	if _, err := svc.Register(ctx, "alice", "password1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "password2"); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGuestLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.GuestLogin(ctx, "wanderer")
	if err != nil {
		t.Fatalf("guest login failed: %v", err)
	}
	if !resp.User.IsGuest {
		t.Fatal("guest user should be marked as guest")
	}
	if !strings.HasSuffix(resp.User.Username, " (guest)") {
		t.Fatalf("guest username should be marked, got %q", resp.User.Username)
	}

	// Guests can never come back through the credentials path.
	if _, err := svc.Login(ctx, resp.User.Username, "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for guest login attempt, got %v", err)
	}

	if _, err := svc.GuestLogin(ctx, "moderator-fan"); !errors.Is(err, ErrUsernameProhibited) {
		t.Fatalf("expected ErrUsernameProhibited, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// Token signed with a different secret.
	other := NewAuthService(repository.NewMemoryUserRepo(), "other-secret", 24*time.Hour, nil)
	resp, err := other.GuestLogin(context.Background(), "wanderer")
	if err != nil {
		t.Fatalf("guest login failed: %v", err)
	}
	if _, err := svc.VerifyToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
