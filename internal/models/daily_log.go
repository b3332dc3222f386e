package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyLog is the per-day aggregate root. Totals always equal the sum over
// Meals and are maintained incrementally by the ledger.
type DailyLog struct {
	ID            uuid.UUID   `gorm:"type:text;primaryKey" json:"id"`
	Date          time.Time   `gorm:"type:date;not null;uniqueIndex:uidx_daily_logs_date" json:"date"`
	TotalCalories int         `gorm:"not null;default:0" json:"total_calories"`
	Protein       float64     `gorm:"not null;default:0" json:"protein"`
	Carbs         float64     `gorm:"not null;default:0" json:"carbs"`
	Fats          float64     `gorm:"not null;default:0" json:"fats"`
	WaterIntake   int         `gorm:"not null;default:0" json:"water_intake_ml"`
	Meals         []MealEntry `gorm:"foreignKey:DailyLogID;constraint:OnDelete:CASCADE" json:"meals"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

func (dailyLog *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if dailyLog.ID == uuid.Nil {
		dailyLog.ID = uuid.New()
	}
	return nil
}

func (dailyLog *DailyLog) Totals() MealTotals {
	return MealTotals{
		TotalCalories: dailyLog.TotalCalories,
		Protein:       dailyLog.Protein,
		Carbs:         dailyLog.Carbs,
		Fats:          dailyLog.Fats,
	}
}

// FindMealByType returns the index of the first meal whose type matches
// mealType case-insensitively, or -1.
func (dailyLog *DailyLog) FindMealByType(mealType string) int {
	for index := range dailyLog.Meals {
		if SameMealType(dailyLog.Meals[index].Type, mealType) {
			return index
		}
	}
	return -1
}

func (dailyLog *DailyLog) FindMealByID(id uuid.UUID) int {
	for index := range dailyLog.Meals {
		if dailyLog.Meals[index].ID == id {
			return index
		}
	}
	return -1
}

func (dailyLog *DailyLog) FindMealByMessageID(messageID uuid.UUID) int {
	for index := range dailyLog.Meals {
		associated := dailyLog.Meals[index].AssociatedMessageID
		if associated != nil && *associated == messageID {
			return index
		}
	}
	return -1
}
