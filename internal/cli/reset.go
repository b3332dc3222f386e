package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/bitebuddy/internal/models"
	"github.com/terraincognita07/bitebuddy/internal/security"
	"github.com/terraincognita07/bitebuddy/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

var (
	ErrResetEmailInvalid   = errors.New("a valid email is required")
	ErrResetProfileMissing = errors.New("profile not found")
)

type PasswordResetStore interface {
	FindByNormalizedEmail(email string) (models.Profile, error)
	UpdatePassword(profileID uint, passwordHash string, mustChangePassword bool) error
}

type ResetPasswordOptions struct {
	Email string
	// Password replaces the generated temporary password when set. A chosen
	// password does not force a change on next login.
	Password string
}

// RunResetPasswordCommand resets the owner's password. Without a chosen
// password it prints a temporary one and flags the profile so the next
// session must change it.
func RunResetPasswordCommand(store PasswordResetStore, options ResetPasswordOptions, out io.Writer) error {
	email := services.NormalizeAuthEmail(options.Email)
	if email == "" {
		return ErrResetEmailInvalid
	}

	profile, err := store.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrResetProfileMissing, email)
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	password := options.Password
	mustChange := false
	if password == "" {
		password, err = security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
		mustChange = true
	} else if err := services.ValidatePasswordStrength(password); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := store.UpdatePassword(profile.ID, string(passwordHash), mustChange); err != nil {
		return fmt.Errorf("update profile password: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s\n", email)
	if mustChange {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
		fmt.Fprintln(out, "The password must be changed on next login.")
	}
	return nil
}
