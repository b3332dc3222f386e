package models

import "time"

const (
	PersonaBiteBuddy = "BiteBuddy"
	PersonaTitan     = "Titan"
	PersonaLumi      = "Lumi"

	GoalTypeLose     = "Lose"
	GoalTypeMaintain = "Maintain"
	GoalTypeGain     = "Gain"

	DefaultDailyGoal      = 2000
	DefaultDailyWaterGoal = 2500
)

// Profile is the single owner of the ledger.
type Profile struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string    `gorm:"not null" json:"-"`
	MustChangePassword  bool      `gorm:"not null;default:false" json:"must_change_password"`
	Name                string    `gorm:"not null;default:''" json:"name"`
	DailyGoal           int       `gorm:"not null;default:2000" json:"daily_goal"`
	DailyWaterGoal      int       `gorm:"not null;default:2500" json:"daily_water_goal"`
	DietType            string    `gorm:"not null;default:''" json:"diet_type"`
	Allergies           []string  `gorm:"serializer:json" json:"allergies"`
	FavoriteCuisines    []string  `gorm:"serializer:json" json:"favorite_cuisines"`
	GoalType            string    `gorm:"not null;default:Maintain" json:"goal_type"`
	ActivityLevel       string    `gorm:"not null;default:''" json:"activity_level"`
	Persona             string    `gorm:"not null;default:BiteBuddy" json:"persona"`
	Language            string    `gorm:"not null;default:en" json:"language"`
	OnboardingCompleted bool      `gorm:"not null;default:false" json:"onboarding_completed"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
}

// DefaultProfile is used before the owner has been set up.
func DefaultProfile() Profile {
	return Profile{
		DailyGoal:      DefaultDailyGoal,
		DailyWaterGoal: DefaultDailyWaterGoal,
		GoalType:       GoalTypeMaintain,
		Persona:        PersonaBiteBuddy,
		Language:       "en",
	}
}
