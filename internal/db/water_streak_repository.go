package db

import (
	"github.com/terraincognita07/bitebuddy/internal/models"
	"gorm.io/gorm"
)

type WaterStreakRepository struct {
	database *gorm.DB
}

func NewWaterStreakRepository(database *gorm.DB) *WaterStreakRepository {
	return &WaterStreakRepository{database: database}
}

// Load returns the single streak row, or a zero streak when none was saved yet.
func (repo *WaterStreakRepository) Load() (models.WaterStreak, error) {
	streak := models.WaterStreak{}
	result := repo.database.Order("id ASC").Limit(1).Find(&streak)
	if result.Error != nil {
		return models.WaterStreak{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.WaterStreak{UnlockedBadges: []string{}}, nil
	}
	if streak.UnlockedBadges == nil {
		streak.UnlockedBadges = []string{}
	}
	return streak, nil
}

func (repo *WaterStreakRepository) Save(streak *models.WaterStreak) error {
	return repo.database.Save(streak).Error
}
