package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/bitebuddy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyLogRepository struct {
	database *gorm.DB
}

func NewDailyLogRepository(database *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{database: database}
}

func withMeals(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Meals", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("timestamp ASC, id ASC")
		}).
		Preload("Meals.FoodItems", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC")
		})
}

func (repo *DailyLogRepository) FindByDayRange(dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := withMeals(repo.database).
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Order("date DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

func (repo *DailyLogRepository) FindByID(id uuid.UUID) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := withMeals(repo.database).Where("id = ?", id).Limit(1).Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

// FindByMealMessageID returns the day owning the meal that was written by
// the given assistant message.
func (repo *DailyLogRepository) FindByMealMessageID(messageID uuid.UUID) (models.DailyLog, bool, error) {
	return repo.findByMeal("associated_message_id = ?", messageID)
}

func (repo *DailyLogRepository) FindByMealID(mealID uuid.UUID) (models.DailyLog, bool, error) {
	return repo.findByMeal("id = ?", mealID)
}

func (repo *DailyLogRepository) findByMeal(condition string, value uuid.UUID) (models.DailyLog, bool, error) {
	meal := models.MealEntry{}
	result := repo.database.Select("id", "daily_log_id").Where(condition, value).Limit(1).Find(&meal)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return repo.FindByID(meal.DailyLogID)
}

func (repo *DailyLogRepository) ListRange(fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error) {
	query := withMeals(repo.database).Model(&models.DailyLog{})
	if fromStart != nil {
		query = query.Where("date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("date < ?", *toEnd)
	}

	logs := make([]models.DailyLog, 0)
	if err := query.Order("date ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Save writes whole aggregates in one transaction. Meals and food items
// missing from an aggregate are deleted explicitly; the store never relies
// on implicit cascades. Aggregates are written in order, so a meal moved
// between days must appear in its new day before the old one is saved.
func (repo *DailyLogRepository) Save(entries ...*models.DailyLog) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := saveAggregate(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveAggregate(tx *gorm.DB, entry *models.DailyLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := tx.Omit(clause.Associations).Save(entry).Error; err != nil {
		return err
	}

	keptMealIDs := make([]uuid.UUID, 0, len(entry.Meals))
	for mealIndex := range entry.Meals {
		meal := &entry.Meals[mealIndex]
		if meal.ID == uuid.Nil {
			meal.ID = uuid.New()
		}
		meal.DailyLogID = entry.ID
		if err := tx.Omit(clause.Associations).Save(meal).Error; err != nil {
			return err
		}
		keptMealIDs = append(keptMealIDs, meal.ID)

		if err := tx.Where("meal_entry_id = ?", meal.ID).Delete(&models.SavedFoodItem{}).Error; err != nil {
			return err
		}
		for itemIndex := range meal.FoodItems {
			item := &meal.FoodItems[itemIndex]
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.MealEntryID = meal.ID
			item.Position = itemIndex
		}
		if len(meal.FoodItems) > 0 {
			if err := tx.Create(&meal.FoodItems).Error; err != nil {
				return err
			}
		}
	}

	staleQuery := tx.Model(&models.MealEntry{}).Where("daily_log_id = ?", entry.ID)
	if len(keptMealIDs) > 0 {
		staleQuery = staleQuery.Where("id NOT IN ?", keptMealIDs)
	}
	staleMealIDs := make([]uuid.UUID, 0)
	if err := staleQuery.Pluck("id", &staleMealIDs).Error; err != nil {
		return err
	}
	if len(staleMealIDs) == 0 {
		return nil
	}
	if err := tx.Where("meal_entry_id IN ?", staleMealIDs).Delete(&models.SavedFoodItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", staleMealIDs).Delete(&models.MealEntry{}).Error
}
