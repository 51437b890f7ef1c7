package services

import (
	"context"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal/datastore"
	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/models"
)

type ServiceLeaderboard struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	postgresDB *bun.DB

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, postgresDB, serviceConfig}, nil
}

// Karma returns the top users by karma score. The redis sorted set is the
// hot path; an empty set falls back to the database and rebuilds it.
func (service *ServiceLeaderboard) Karma(ctx context.Context) ([]*models.LeaderboardItem, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)

	items, err := redis_store.GetKarmaLeaderboard(ctx, service.redisDB, limit)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if len(items) == 0 {
		users, err := datastore.GetTopUsersByKarma(ctx, service.postgresDB, limit)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		for i, user := range users {
			score := models.KarmaScore(user.Karma, user.Level)
			items = append(items, &models.LeaderboardItem{
				UserID:   user.ID,
				Username: user.Username,
				Score:    float64(score),
				Level:    user.Level,
				Rank:     i + 1,
			})

			if err := redis_store.SetKarmaLeaderboard(ctx, service.redisDB, user.ID, score); err != nil {
				return items, nil
			}
		}

		return items, nil
	}

	return service.hydrate(ctx, items)
}

// Referral returns the top inviters.
func (service *ServiceLeaderboard) Referral(ctx context.Context) ([]*models.LeaderboardItem, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REF_LEADERBOARD_LIMIT, REFERRAL_LEADERBOARD_DEFAULT_LIMIT)

	items, err := redis_store.GetReferralLeaderboard(ctx, service.redisDB, limit)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return service.hydrate(ctx, items)
}

func (service *ServiceLeaderboard) hydrate(ctx context.Context, items []*models.LeaderboardItem) ([]*models.LeaderboardItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UserID)
	}

	users, err := datastore.GetUsersByIDs(ctx, service.postgresDB, ids)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	byID := make(map[int64]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	for _, item := range items {
		if user, ok := byID[item.UserID]; ok {
			item.Username = user.Username
			item.Level = user.Level
		}
	}

	return items, nil
}
