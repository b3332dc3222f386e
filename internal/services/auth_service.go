package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/bitebuddy/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrOwnerExists                = errors.New("owner already set up")
	ErrOwnerMissing               = errors.New("owner not set up")
	ErrPasswordChangeInvalidInput = errors.New("password change invalid input")
	ErrPasswordMismatch           = errors.New("password confirmation mismatch")
	ErrInvalidCurrentPassword     = errors.New("invalid current password")
	ErrNewPasswordMustDiffer      = errors.New("new password must differ")
)

type AuthProfileRepository interface {
	Count() (int64, error)
	FindByID(profileID uint) (models.Profile, error)
	FindByNormalizedEmail(email string) (models.Profile, error)
	Create(profile *models.Profile) error
	UpdatePassword(profileID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	profiles AuthProfileRepository
}

func NewAuthService(profiles AuthProfileRepository) *AuthService {
	return &AuthService{profiles: profiles}
}

func (service *AuthService) RequiresInitialSetup() (bool, error) {
	count, err := service.profiles.Count()
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// SetupOwner creates the single ledger owner. It only succeeds on an empty
// profile table.
func (service *AuthService) SetupOwner(emailRaw string, passwordRaw string, name string) (models.Profile, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.Profile{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.Profile{}, err
	}

	required, err := service.RequiresInitialSetup()
	if err != nil {
		return models.Profile{}, err
	}
	if !required {
		return models.Profile{}, ErrOwnerExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	profile := models.DefaultProfile()
	profile.Email = email
	profile.PasswordHash = string(passwordHash)
	profile.Name = strings.TrimSpace(name)
	if err := service.profiles.Create(&profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (service *AuthService) Authenticate(emailRaw string, passwordRaw string) (models.Profile, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.Profile{}, err
	}

	profile, err := service.profiles.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, ErrAuthCredentialsInvalid
	}
	if err != nil {
		return models.Profile{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return models.Profile{}, ErrAuthCredentialsInvalid
	}
	return profile, nil
}

func (service *AuthService) FindByID(profileID uint) (models.Profile, error) {
	profile, err := service.profiles.FindByID(profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, ErrOwnerMissing
	}
	return profile, err
}

// ChangePassword verifies the current password and clears the forced change
// flag set by a CLI reset.
func (service *AuthService) ChangePassword(profileID uint, currentPassword string, newPassword string, confirmPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrPasswordChangeInvalidInput
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	profile, err := service.FindByID(profileID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrNewPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.profiles.UpdatePassword(profileID, string(passwordHash), false)
}
