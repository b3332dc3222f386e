package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MealTypeBreakfast = "Breakfast"
	MealTypeLunch     = "Lunch"
	MealTypeDinner    = "Dinner"
	MealTypeSnack     = "Snack"
)

// SameMealType compares meal types the way the ledger does: case-insensitive,
// surrounding whitespace ignored.
func SameMealType(left string, right string) bool {
	return strings.EqualFold(strings.TrimSpace(left), strings.TrimSpace(right))
}

type MealEntry struct {
	ID                  uuid.UUID       `gorm:"type:text;primaryKey" json:"id"`
	DailyLogID          uuid.UUID       `gorm:"type:text;not null;index" json:"daily_log_id"`
	Timestamp           time.Time       `gorm:"not null" json:"timestamp"`
	Type                string          `gorm:"not null" json:"type"`
	TotalCalories       int             `gorm:"not null;default:0" json:"total_calories"`
	Protein             float64         `gorm:"not null;default:0" json:"protein"`
	Carbs               float64         `gorm:"not null;default:0" json:"carbs"`
	Fats                float64         `gorm:"not null;default:0" json:"fats"`
	HealthScore         *int            `json:"health_score,omitempty"`
	AssociatedMessageID *uuid.UUID      `gorm:"type:text;index" json:"associated_message_id,omitempty"`
	FoodItems           []SavedFoodItem `gorm:"foreignKey:MealEntryID;constraint:OnDelete:CASCADE" json:"food_items"`
}

func (entry *MealEntry) BeforeCreate(tx *gorm.DB) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return nil
}

func (entry *MealEntry) Totals() MealTotals {
	return MealTotals{
		TotalCalories: entry.TotalCalories,
		Protein:       entry.Protein,
		Carbs:         entry.Carbs,
		Fats:          entry.Fats,
	}
}

type SavedFoodItem struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	MealEntryID uuid.UUID `gorm:"type:text;not null;index" json:"meal_entry_id"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Name        string    `gorm:"not null" json:"name"`
	Quantity    string    `gorm:"not null;default:''" json:"quantity"`
	Calories    int       `gorm:"not null;default:0" json:"calories"`
}

func (item *SavedFoodItem) BeforeCreate(tx *gorm.DB) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return nil
}

// MealTotals is a value snapshot of nutrition totals.
type MealTotals struct {
	TotalCalories int     `json:"total_calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fats          float64 `json:"fats"`
}
