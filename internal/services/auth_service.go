package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/cyclelog/internal/db"
	"github.com/terraincognita07/cyclelog/internal/models"
	"github.com/terraincognita07/cyclelog/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordLength = 12

type AuthUserRepository interface {
	FindByID(userID uint) (models.User, bool, error)
	FindByEmail(email string) (models.User, bool, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users      AuthUserRepository
	bcryptCost int
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{
		users:      users,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Authenticate checks the credentials. A user flagged by a password reset is
// returned together with ErrPasswordChangeRequired.
func (service *AuthService) Authenticate(emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, found, err := service.users.FindByEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if user.MustChangePassword {
		return user, ErrPasswordChangeRequired
	}
	return user, nil
}

func (service *AuthService) CreateUser(emailRaw string, password string) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	hash, err := service.hash(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := service.users.Create(&user); err != nil {
		if errors.Is(err, db.ErrDuplicateEntry) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ResetPassword replaces the password of emailRaw with a random temporary one
// that must be changed on next login. The temporary password is returned.
func (service *AuthService) ResetPassword(emailRaw string) (string, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return "", ErrInvalidCredentials
	}

	user, found, err := service.users.FindByEmail(email)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !found {
		return "", ErrUserNotFound
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := service.hash(temporaryPassword)
	if err != nil {
		return "", err
	}
	if err := service.users.UpdatePassword(user.ID, hash, true); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}
	return temporaryPassword, nil
}

// ChangePassword verifies currentPassword and stores newPassword, clearing the reset flag.
func (service *AuthService) ChangePassword(userID uint, currentPassword string, newPassword string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := service.hash(newPassword)
	if err != nil {
		return err
	}
	if err := service.users.UpdatePassword(user.ID, hash, false); err != nil {
		if db.IsNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, found, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (service *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
