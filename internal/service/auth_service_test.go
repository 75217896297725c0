package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	return NewAuthService(users, cfg), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana Petrov", "ana@example.com", "hunter2x", model.RoleStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "hunter2x" {
		t.Fatalf("password stored in clear")
	}

	token, got, err := svc.Login(ctx, "ana@example.com", "hunter2x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login user = %s, want %s", got.ID, user.ID)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleStudent {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana Petrov", "ana@example.com", "hunter2x", model.RoleStudent); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown email and wrong password fail identically.
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter2x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana Petrov", "ana@example.com", "hunter2x", model.RoleStudent); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Other Ana", "ana@example.com", "different", model.RoleInstructor); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService()

	if _, err := svc.Register(context.Background(), "X", "x@example.com", "hunter2x", model.Role("SUPERUSER")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown role err = %v, want ErrInvalidInput", err)
	}
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc, _ := newAuthService()
	other, _ := newAuthService()
	other.jwtSecret = []byte("another-secret")

	user, err := svc.Register(context.Background(), "Ana Petrov", "ana@example.com", "hunter2x", model.RoleStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	forged, err := other.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateToken(forged); err == nil {
		t.Fatalf("token signed with a different secret accepted")
	}
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}
