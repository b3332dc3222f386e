package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID              uuid.UUID    `gorm:"type:text;primaryKey" json:"id"`
	Content         string       `gorm:"not null" json:"content"`
	IsUser          bool         `gorm:"not null;default:false" json:"is_user"`
	Timestamp       time.Time    `gorm:"not null;index" json:"timestamp"`
	AttachedSummary *MealSummary `gorm:"column:summary_data;serializer:json" json:"summary,omitempty"`
}

func (message *Message) BeforeCreate(tx *gorm.DB) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	return nil
}

func (message Message) HasSummary() bool {
	return !message.IsUser && message.AttachedSummary != nil
}
