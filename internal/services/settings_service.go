package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/bitebuddy/internal/models"
)

const (
	maxSettingsNameLength = 64
	minDailyGoal          = 500
	maxDailyGoal          = 10000
	minDailyWaterGoal     = 500
	maxDailyWaterGoal     = 10000
)

var (
	ErrSettingsNameTooLong       = errors.New("settings name too long")
	ErrSettingsGoalOutOfRange    = errors.New("settings daily goal out of range")
	ErrSettingsWaterGoalRange    = errors.New("settings water goal out of range")
	ErrSettingsPersonaUnknown    = errors.New("settings persona unknown")
	ErrSettingsGoalTypeUnknown   = errors.New("settings goal type unknown")
	ErrSettingsProfileNotCreated = errors.New("settings profile not created")
)

var (
	personaCatalogue = []string{models.PersonaBiteBuddy, models.PersonaTitan, models.PersonaLumi}
	goalTypes        = []string{models.GoalTypeLose, models.GoalTypeMaintain, models.GoalTypeGain}
)

type SettingsProfileRepository interface {
	FindOwner() (models.Profile, bool, error)
	Save(profile *models.Profile) error
}

type LanguageNormalizer interface {
	NormalizeLanguage(raw string) string
}

// ProfileUpdate carries only the fields the caller wants to change.
type ProfileUpdate struct {
	Name                *string   `json:"name"`
	DailyGoal           *int      `json:"daily_goal"`
	DailyWaterGoal      *int      `json:"daily_water_goal"`
	DietType            *string   `json:"diet_type"`
	Allergies           *[]string `json:"allergies"`
	FavoriteCuisines    *[]string `json:"favorite_cuisines"`
	GoalType            *string   `json:"goal_type"`
	ActivityLevel       *string   `json:"activity_level"`
	Persona             *string   `json:"persona"`
	Language            *string   `json:"language"`
	OnboardingCompleted *bool     `json:"onboarding_completed"`
}

type SettingsService struct {
	profiles  SettingsProfileRepository
	languages LanguageNormalizer
}

func NewSettingsService(profiles SettingsProfileRepository, languages LanguageNormalizer) *SettingsService {
	return &SettingsService{profiles: profiles, languages: languages}
}

func Personas() []string {
	result := make([]string, len(personaCatalogue))
	copy(result, personaCatalogue)
	return result
}

func (service *SettingsService) LoadProfile() (models.Profile, error) {
	profile, found, err := service.profiles.FindOwner()
	if err != nil {
		return models.Profile{}, err
	}
	if !found {
		return models.DefaultProfile(), nil
	}
	return profile, nil
}

func (service *SettingsService) UpdateProfile(update ProfileUpdate) (models.Profile, error) {
	profile, found, err := service.profiles.FindOwner()
	if err != nil {
		return models.Profile{}, err
	}
	if !found {
		return models.Profile{}, ErrSettingsProfileNotCreated
	}
	if err := service.ApplyProfileUpdate(&profile, update); err != nil {
		return models.Profile{}, err
	}
	if err := service.profiles.Save(&profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// ApplyProfileUpdate validates every provided field before changing profile.
func (service *SettingsService) ApplyProfileUpdate(profile *models.Profile, update ProfileUpdate) error {
	next := *profile

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if utf8.RuneCountInString(name) > maxSettingsNameLength {
			return ErrSettingsNameTooLong
		}
		next.Name = name
	}
	if update.DailyGoal != nil {
		if *update.DailyGoal < minDailyGoal || *update.DailyGoal > maxDailyGoal {
			return ErrSettingsGoalOutOfRange
		}
		next.DailyGoal = *update.DailyGoal
	}
	if update.DailyWaterGoal != nil {
		if *update.DailyWaterGoal < minDailyWaterGoal || *update.DailyWaterGoal > maxDailyWaterGoal {
			return ErrSettingsWaterGoalRange
		}
		next.DailyWaterGoal = *update.DailyWaterGoal
	}
	if update.DietType != nil {
		next.DietType = strings.TrimSpace(*update.DietType)
	}
	if update.Allergies != nil {
		next.Allergies = normalizeProfileList(*update.Allergies)
	}
	if update.FavoriteCuisines != nil {
		next.FavoriteCuisines = normalizeProfileList(*update.FavoriteCuisines)
	}
	if update.GoalType != nil {
		goalType, ok := matchCatalogue(goalTypes, *update.GoalType)
		if !ok {
			return ErrSettingsGoalTypeUnknown
		}
		next.GoalType = goalType
	}
	if update.ActivityLevel != nil {
		next.ActivityLevel = strings.TrimSpace(*update.ActivityLevel)
	}
	if update.Persona != nil {
		persona, ok := matchCatalogue(personaCatalogue, *update.Persona)
		if !ok {
			return ErrSettingsPersonaUnknown
		}
		next.Persona = persona
	}
	if update.Language != nil && service.languages != nil {
		next.Language = service.languages.NormalizeLanguage(*update.Language)
	}
	if update.OnboardingCompleted != nil {
		next.OnboardingCompleted = *update.OnboardingCompleted
	}

	*profile = next
	return nil
}

func matchCatalogue(catalogue []string, raw string) (string, bool) {
	for _, candidate := range catalogue {
		if strings.EqualFold(candidate, strings.TrimSpace(raw)) {
			return candidate, true
		}
	}
	return "", false
}

func normalizeProfileList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		key := strings.ToLower(trimmed)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
