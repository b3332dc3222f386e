package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/bitebuddy/internal/models"
)

var ErrStatsMonthInvalid = errors.New("invalid stats month")

const monthLayout = "2006-01"

type StatsDayReader interface {
	FetchRange(from time.Time, to time.Time) ([]models.DailyLog, error)
}

type StatsService struct {
	days     StatsDayReader
	location *time.Location
}

func NewStatsService(days StatsDayReader, location *time.Location) *StatsService {
	if location == nil {
		location = time.UTC
	}
	return &StatsService{days: days, location: location}
}

type DayStat struct {
	Date          string `json:"date"`
	TotalCalories int    `json:"total_calories"`
	WaterIntake   int    `json:"water_intake_ml"`
	MealCount     int    `json:"meal_count"`
	OverGoal      bool   `json:"over_goal"`
}

type MonthStats struct {
	Month           string    `json:"month"`
	Goal            int       `json:"goal"`
	WaterGoal       int       `json:"water_goal"`
	Days            []DayStat `json:"days"`
	MaxCalories     int       `json:"max_calories"`
	MaxCalorieDate  string    `json:"max_calorie_date,omitempty"`
	MinCalories     int       `json:"min_calories"`
	MinCalorieDate  string    `json:"min_calorie_date,omitempty"`
	AverageCalories int       `json:"average_calories"`
	DaysOnGoal      int       `json:"days_on_goal"`
	DaysOverGoal    int       `json:"days_over_goal"`
	WaterGoalDays   int       `json:"water_goal_days"`
}

// ParseMonth accepts YYYY-MM and falls back to the month containing now
// when raw is empty.
func ParseMonth(raw string, now time.Time, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		year, month, _ := now.In(location).Date()
		return time.Date(year, month, 1, 0, 0, 0, 0, location), nil
	}
	parsed, err := time.ParseInLocation(monthLayout, trimmed, location)
	if err != nil {
		return time.Time{}, ErrStatsMonthInvalid
	}
	return parsed, nil
}

// BuildMonthStats scans the stored days of the month at read time; nothing
// is precomputed.
func (service *StatsService) BuildMonthStats(monthStart time.Time, profile models.Profile) (MonthStats, error) {
	monthEnd := monthStart.AddDate(0, 1, -1)
	logs, err := service.days.FetchRange(monthStart, monthEnd)
	if err != nil {
		return MonthStats{}, err
	}
	return SummarizeMonth(monthStart, logs, profile), nil
}

func SummarizeMonth(monthStart time.Time, logs []models.DailyLog, profile models.Profile) MonthStats {
	goal := profile.DailyGoal
	if goal <= 0 {
		goal = models.DefaultDailyGoal
	}
	waterGoal := profile.DailyWaterGoal
	if waterGoal <= 0 {
		waterGoal = models.DefaultDailyWaterGoal
	}

	stats := MonthStats{
		Month:     monthStart.Format(monthLayout),
		Goal:      goal,
		WaterGoal: waterGoal,
		Days:      make([]DayStat, 0, len(logs)),
	}

	loggedDays := 0
	caloriesSum := 0
	for index, dailyLog := range logs {
		date := dailyLog.Date.Format(DateLayout)
		stats.Days = append(stats.Days, DayStat{
			Date:          date,
			TotalCalories: dailyLog.TotalCalories,
			WaterIntake:   dailyLog.WaterIntake,
			MealCount:     len(dailyLog.Meals),
			OverGoal:      dailyLog.TotalCalories > goal,
		})

		if index == 0 || dailyLog.TotalCalories > stats.MaxCalories {
			stats.MaxCalories = dailyLog.TotalCalories
			stats.MaxCalorieDate = date
		}
		if index == 0 || dailyLog.TotalCalories < stats.MinCalories {
			stats.MinCalories = dailyLog.TotalCalories
			stats.MinCalorieDate = date
		}
		if dailyLog.WaterIntake >= waterGoal {
			stats.WaterGoalDays++
		}
		if len(dailyLog.Meals) == 0 {
			continue
		}
		loggedDays++
		caloriesSum += dailyLog.TotalCalories
		if dailyLog.TotalCalories > goal {
			stats.DaysOverGoal++
		} else {
			stats.DaysOnGoal++
		}
	}

	if loggedDays > 0 {
		stats.AverageCalories = caloriesSum / loggedDays
	}
	return stats
}
