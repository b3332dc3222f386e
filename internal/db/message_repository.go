package db

import (
	"time"

	"github.com/terraincognita07/bitebuddy/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	database *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{database: database}
}

func (repo *MessageRepository) Create(message *models.Message) error {
	return repo.database.Create(message).Error
}

func (repo *MessageRepository) ListSince(since time.Time) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	if err := repo.database.
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListRecent returns the newest limit messages in chronological order.
func (repo *MessageRepository) ListRecent(limit int) ([]models.Message, error) {
	messages := make([]models.Message, 0, limit)
	if err := repo.database.
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	for left, right := 0, len(messages)-1; left < right; left, right = left+1, right-1 {
		messages[left], messages[right] = messages[right], messages[left]
	}
	return messages, nil
}

func (repo *MessageRepository) LastWithSummary() (models.Message, bool, error) {
	message := models.Message{}
	result := repo.database.
		Where("is_user = ? AND summary_data IS NOT NULL AND summary_data <> ?", false, "null").
		Order("timestamp DESC").
		Limit(1).
		Find(&message)
	if result.Error != nil {
		return models.Message{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Message{}, false, nil
	}
	return message, true, nil
}
