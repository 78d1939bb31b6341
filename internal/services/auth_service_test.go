package services

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (*AuthService, *stubUserRepo) {
	repo := &stubUserRepo{}
	service := NewAuthService(repo)
	service.bcryptCost = bcrypt.MinCost
	return service, repo
}

func TestAuthServiceCreateAndAuthenticate(t *testing.T) {
	service, _ := newTestAuthService()

	created, err := service.CreateUser(" Owner@Example.com ", "StrongPass1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Email != "owner@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}

	user, err := service.Authenticate("OWNER@example.com", "StrongPass1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, user.ID)
	}

	if _, err := service.Authenticate("owner@example.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Authenticate("nobody@example.com", "StrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := service.Authenticate("not-an-email", "StrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for malformed email, got %v", err)
	}
}

func TestAuthServiceCreateUserRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	service, _ := newTestAuthService()

	if _, err := service.CreateUser("owner@example.com", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := service.CreateUser("owner@example.com", "StrongPass1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := service.CreateUser("owner@example.com", "StrongPass2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthServiceResetPasswordRequiresChange(t *testing.T) {
	service, repo := newTestAuthService()
	created, err := service.CreateUser("owner@example.com", "StrongPass1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	temporary, err := service.ResetPassword("owner@example.com")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if !repo.users[0].MustChangePassword {
		t.Fatalf("expected must_change_password to be set")
	}

	if _, err := service.Authenticate("owner@example.com", "StrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	user, err := service.Authenticate("owner@example.com", temporary)
	if !errors.Is(err, ErrPasswordChangeRequired) {
		t.Fatalf("expected ErrPasswordChangeRequired, got %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected flagged user to be returned, got %+v", user)
	}

	if err := service.ChangePassword(created.ID, temporary, "NewStrong2"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := service.Authenticate("owner@example.com", "NewStrong2"); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
}

func TestAuthServiceResetPasswordUnknownUser(t *testing.T) {
	service, _ := newTestAuthService()

	if _, err := service.ResetPassword("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthServiceChangePasswordChecksCurrentPassword(t *testing.T) {
	service, _ := newTestAuthService()
	created, err := service.CreateUser("owner@example.com", "StrongPass1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := service.ChangePassword(created.ID, "WrongPass1", "NewStrong2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := service.ChangePassword(created.ID, "StrongPass1", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := service.ChangePassword(created.ID+10, "StrongPass1", "NewStrong2"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
