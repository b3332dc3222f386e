package db

import "gorm.io/gorm"

type Repositories struct {
	Profiles     *ProfileRepository
	DailyLogs    *DailyLogRepository
	Messages     *MessageRepository
	WaterStreaks *WaterStreakRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:     NewProfileRepository(database),
		DailyLogs:    NewDailyLogRepository(database),
		Messages:     NewMessageRepository(database),
		WaterStreaks: NewWaterStreakRepository(database),
	}
}
