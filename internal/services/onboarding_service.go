package services

import (
	"errors"

	"github.com/terraincognita07/bitebuddy/internal/models"
)

var (
	ErrOnboardingPersonaRequired  = errors.New("onboarding persona is required")
	ErrOnboardingAlreadyCompleted = errors.New("onboarding already completed")
)

// OnboardingService finishes the first-run flow: the owner picks a coach
// persona and may fill in profile details before the first chat.
type OnboardingService struct {
	profiles SettingsProfileRepository
	settings *SettingsService
}

func NewOnboardingService(profiles SettingsProfileRepository, settings *SettingsService) *OnboardingService {
	return &OnboardingService{profiles: profiles, settings: settings}
}

// Required reports whether chat is still gated behind onboarding. A missing
// owner counts as not onboarded.
func (service *OnboardingService) Required() (bool, error) {
	profile, found, err := service.profiles.FindOwner()
	if err != nil {
		return false, err
	}
	return !found || !profile.OnboardingCompleted, nil
}

// Complete validates update like a settings change, requires a persona and
// marks onboarding done in the same save.
func (service *OnboardingService) Complete(update ProfileUpdate) (models.Profile, error) {
	if update.Persona == nil {
		return models.Profile{}, ErrOnboardingPersonaRequired
	}

	profile, found, err := service.profiles.FindOwner()
	if err != nil {
		return models.Profile{}, err
	}
	if !found {
		return models.Profile{}, ErrSettingsProfileNotCreated
	}
	if profile.OnboardingCompleted {
		return models.Profile{}, ErrOnboardingAlreadyCompleted
	}

	completed := true
	update.OnboardingCompleted = &completed
	if err := service.settings.ApplyProfileUpdate(&profile, update); err != nil {
		return models.Profile{}, err
	}
	if err := service.profiles.Save(&profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
