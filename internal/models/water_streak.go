package models

import "time"

const (
	BadgeStreak3  = "streak_3"
	BadgeStreak7  = "streak_7"
	BadgeStreak30 = "streak_30"
)

type WaterStreak struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	CurrentStreak  int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int        `gorm:"not null;default:0" json:"longest_streak"`
	LastGoalDate   *time.Time `gorm:"type:date" json:"last_goal_date,omitempty"`
	UnlockedBadges []string   `gorm:"serializer:json" json:"unlocked_badges"`
	UpdatedAt      time.Time  `json:"-"`
}

func (streak WaterStreak) HasBadge(badge string) bool {
	for _, unlocked := range streak.UnlockedBadges {
		if unlocked == badge {
			return true
		}
	}
	return false
}
