package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal/datastore"
	"karmabot/internal/models"
	"karmabot/internal/pkg/caching"
)

const AchievementCodeHabitDone = "habit_done"

type ServiceHabit struct {
	container  *do.Injector
	postgresDB *bun.DB
	cache      caching.Cache

	serviceKarma  *ServiceKarma
	serviceConfig *ServiceConfig
}

func NewServiceHabit(container *do.Injector) (*ServiceHabit, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	serviceKarma, err := do.Invoke[*ServiceKarma](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceHabit{container, postgresDB, cache, serviceKarma, serviceConfig}, nil
}

func (service *ServiceHabit) Create(ctx context.Context, userID int64, name string, target int) (*models.Habit, error) {
	if name == "" {
		return nil, errorx.Wrap(errors.New("habit name is required"), errorx.Validation)
	}
	if target <= 0 {
		return nil, errorx.Wrap(errors.New("target must be positive"), errorx.Validation)
	}

	habit := &models.Habit{
		UserID:    userID,
		Name:      name,
		Target:    target,
		CreatedAt: time.Now(),
	}

	habit, err := datastore.CreateHabit(ctx, service.postgresDB, habit)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyUserHabits(userID))

	return habit, nil
}

func (service *ServiceHabit) List(ctx context.Context, userID int64) ([]*models.Habit, error) {
	callback := func() ([]*models.Habit, error) {
		return datastore.GetHabitsByUser(ctx, service.postgresDB, userID)
	}
	return caching.UseCache(ctx, service.cache, DBKeyUserHabits(userID), CACHE_TTL_1_MIN, callback)
}

// Track bumps the habit by one. The first time progress reaches the target
// the completion badge and karma land; later increments past the target are
// plain counts.
func (service *ServiceHabit) Track(ctx context.Context, userID, habitID int64) (*models.Habit, bool, error) {
	habit, err := datastore.IncrementHabitProgress(ctx, service.postgresDB, habitID, userID, 1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, errorx.Wrap(errors.New("habit not found"), errorx.NotExist)
		}
		return nil, false, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyUserHabits(userID))

	completed := habit.IsDone && habit.Progress == habit.Target
	if !completed {
		return habit, false, nil
	}

	granted, err := datastore.InsertAchievement(ctx, service.postgresDB, &models.Achievement{
		UserID:      userID,
		Code:        fmt.Sprintf("%s:%d", AchievementCodeHabitDone, habitID),
		Title:       "🧘 Persistence",
		Description: fmt.Sprintf("Completed the habit %q.", habit.Name),
		EarnedAt:    time.Now(),
	})
	if err != nil {
		log.Println(err)
	}

	if granted {
		reward, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_KARMA_HABIT_COMPLETE, KARMA_HABIT_COMPLETE_DEFAULT)
		if _, _, err := service.serviceKarma.AddKarma(ctx, userID, reward, models.KarmaActionHabitComplete); err != nil {
			log.Println("habit reward failed:", "user:", userID, err)
		}
	}

	return habit, true, nil
}

func (service *ServiceHabit) Delete(ctx context.Context, userID, habitID int64) error {
	removed, err := datastore.DeleteHabit(ctx, service.postgresDB, habitID, userID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	if !removed {
		return errorx.Wrap(errors.New("habit not found"), errorx.NotExist)
	}

	_ = service.cache.Delete(ctx, DBKeyUserHabits(userID))

	return nil
}

func (service *ServiceHabit) Achievements(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	achievements, err := datastore.GetAchievementsByUser(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return achievements, nil
}
