package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebuddy/internal/models"
)

const DefaultStreakSchedule = "5 0 * * *"

var streakBadges = []struct {
	id   string
	days int
}{
	{id: models.BadgeStreak3, days: 3},
	{id: models.BadgeStreak7, days: 7},
	{id: models.BadgeStreak30, days: 30},
}

type StreakStore interface {
	Load() (models.WaterStreak, error)
	Save(streak *models.WaterStreak) error
}

type StreakObserver interface {
	StreakChanged(days int)
}

type noopStreakObserver struct{}

func (noopStreakObserver) StreakChanged(int) {}

// StreakService tracks consecutive days on which the water goal was reached.
type StreakService struct {
	mu       sync.Mutex
	store    StreakStore
	location *time.Location
	logger   logrus.FieldLogger
	observer StreakObserver
}

func NewStreakService(store StreakStore, location *time.Location, logger logrus.FieldLogger) *StreakService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StreakService{
		store:    store,
		location: location,
		logger:   logger.WithField("component", "streak"),
		observer: noopStreakObserver{},
	}
}

func (service *StreakService) SetObserver(observer StreakObserver) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if observer == nil {
		observer = noopStreakObserver{}
	}
	service.observer = observer
}

func (service *StreakService) Current() (models.WaterStreak, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	return service.store.Load()
}

// CheckGoalReached counts today once when intakeML reaches goalML. The
// streak continues when the previous goal day was yesterday and restarts at
// one otherwise.
func (service *StreakService) CheckGoalReached(now time.Time, intakeML int, goalML int) (models.WaterStreak, error) {
	if goalML <= 0 {
		goalML = models.DefaultDailyWaterGoal
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	streak, err := service.store.Load()
	if err != nil {
		return models.WaterStreak{}, fmt.Errorf("load water streak: %w", err)
	}
	if intakeML < goalML {
		return streak, nil
	}

	today := service.calendarDay(now)
	if streak.LastGoalDate != nil && sameDay(*streak.LastGoalDate, today) {
		return streak, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	if streak.LastGoalDate != nil && sameDay(*streak.LastGoalDate, yesterday) {
		streak.CurrentStreak++
	} else {
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastGoalDate = &today

	for _, badge := range streakBadges {
		if streak.CurrentStreak >= badge.days && !streak.HasBadge(badge.id) {
			streak.UnlockedBadges = append(streak.UnlockedBadges, badge.id)
			service.logger.WithField("badge", badge.id).Info("hydration badge unlocked")
		}
	}

	if err := service.store.Save(&streak); err != nil {
		return models.WaterStreak{}, fmt.Errorf("save water streak: %w", err)
	}
	service.observer.StreakChanged(streak.CurrentStreak)
	service.logger.WithFields(logrus.Fields{
		"current": streak.CurrentStreak,
		"longest": streak.LongestStreak,
	}).Info("water goal reached")
	return streak, nil
}

// ExpireIfBroken zeroes the current streak once a whole day has passed
// without the goal being reached. Badges and the longest streak are kept.
func (service *StreakService) ExpireIfBroken(now time.Time) (bool, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	streak, err := service.store.Load()
	if err != nil {
		return false, fmt.Errorf("load water streak: %w", err)
	}
	if streak.CurrentStreak == 0 || streak.LastGoalDate == nil {
		return false, nil
	}

	yesterday := service.calendarDay(now).AddDate(0, 0, -1)
	if !streak.LastGoalDate.Before(yesterday) {
		return false, nil
	}

	streak.CurrentStreak = 0
	if err := service.store.Save(&streak); err != nil {
		return false, fmt.Errorf("save water streak: %w", err)
	}
	service.observer.StreakChanged(0)
	service.logger.WithField("last_goal_date", streak.LastGoalDate.Format(DateLayout)).Info("water streak expired")
	return true, nil
}

// calendarDay maps now to its local calendar date expressed as UTC midnight,
// which is how goal dates are stored.
func (service *StreakService) calendarDay(now time.Time) time.Time {
	year, month, day := now.In(service.location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StreakScheduler runs the nightly streak expiry.
type StreakScheduler struct {
	cron   *cron.Cron
	logger logrus.FieldLogger
}

func NewStreakScheduler(service *StreakService, spec string, logger logrus.FieldLogger) (*StreakScheduler, error) {
	if spec == "" {
		spec = DefaultStreakSchedule
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "streak_scheduler")

	scheduler := &StreakScheduler{
		cron:   cron.New(cron.WithLocation(service.location)),
		logger: logger,
	}
	if _, err := scheduler.cron.AddFunc(spec, func() {
		if _, err := service.ExpireIfBroken(time.Now()); err != nil {
			logger.WithError(err).Error("nightly streak check failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule streak check %q: %w", spec, err)
	}
	return scheduler, nil
}

func (scheduler *StreakScheduler) Start() {
	scheduler.cron.Start()
	scheduler.logger.Info("streak scheduler started")
}

// Stop waits for a running check to finish or ctx to expire.
func (scheduler *StreakScheduler) Stop(ctx context.Context) {
	select {
	case <-scheduler.cron.Stop().Done():
	case <-ctx.Done():
	}
}
