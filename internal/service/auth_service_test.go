package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medifit/medifit-api/internal/config"
	"github.com/medifit/medifit-api/internal/domain"
	"github.com/medifit/medifit-api/pkg/auth"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-test-secret-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "medifit-test",
	})
	svc := NewAuthService(users, jwtManager, plainVerifier{}, testLogger())
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	u, err := svc.Register(context.Background(), &RegisterUserCommand{
		Username: "seoul-clinic",
		Password: "correct horse",
		Role:     domain.RoleHospital,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != domain.RoleHospital {
		t.Errorf("role = %s, want hospital", u.Role)
	}

	pair, logged, err := svc.Login(context.Background(), "seoul-clinic", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("token pair incomplete")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %s", pair.TokenType)
	}
	if logged.LastLoginAt == nil {
		t.Error("LastLoginAt not recorded")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), &RegisterUserCommand{
		Username: "user1", Password: "password1",
	}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(context.Background(), "user1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, users := newAuthFixture()

	u, err := svc.Register(context.Background(), &RegisterUserCommand{
		Username: "dormant", Password: "password1",
	})
	if err != nil {
		t.Fatal(err)
	}
	users.users[u.ID].IsActive = false

	if _, _, err := svc.Login(context.Background(), "dormant", "password1"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("err = %v, want ErrAccountInactive", err)
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc, _ := newAuthFixture()

	cmd := &RegisterUserCommand{Username: "dup", Password: "password1"}
	if _, err := svc.Register(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), cmd); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), &RegisterUserCommand{
		Username: "refresher", Password: "password1",
	}); err != nil {
		t.Fatal(err)
	}

	pair, _, err := svc.Login(context.Background(), "refresher", "password1")
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("refreshed access token empty")
	}

	// An access token is not accepted as a refresh token.
	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Refresh with access token err = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()

	u, err := svc.Register(context.Background(), &RegisterUserCommand{
		Username: "changer", Password: "password1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current err = %v, want ErrInvalidCredentials", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "password1", "newpassword"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "changer", "newpassword"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
