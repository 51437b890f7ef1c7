package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal/datastore"
	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/models"
	"karmabot/internal/pkg/caching"
)

type ServiceKarma struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache
}

func NewServiceKarma(container *do.Injector) (*ServiceKarma, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceKarma{container, db, rs, postgresDB, cache}, nil
}

// AddKarma credits amount karma to the user and returns the amount actually
// applied, after the premium multiplier. The multiplier is applied exactly
// once to the whole credit before any level carry; it never compounds inside
// the carry loop. The read-modify-write runs under a per-user lock so two
// concurrent credits cannot both read the same balance.
func (service *ServiceKarma) AddKarma(ctx context.Context, userID int64, amount int, action string) (*models.User, int, error) {
	if amount < 0 {
		return nil, 0, errorx.Wrap(errors.New("amount must not be negative"), errorx.Validation)
	}
	// zero credits nothing and is always safe to call
	if amount == 0 {
		return nil, 0, nil
	}

	mutex := service.rs.NewMutex(LockKeyUserKarma(userID))
	if err := mutex.Lock(); err != nil {
		return nil, 0, errorx.Wrap(ErrUserKarmaLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, 0, errorx.Wrap(err, errorx.NotExist)
	}

	applied := creditAmount(amount, service.IsPremium(ctx, user))

	karma, level := models.ApplyKarma(user.Karma, user.Level, applied)

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := datastore.UpdateUserKarma(ctx, tx, userID, karma, level); err != nil {
			return err
		}

		return datastore.InsertKarmaEvent(ctx, tx, &models.KarmaEvent{
			UserID:    userID,
			Amount:    applied,
			Action:    action,
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, 0, errorx.Wrap(err, errorx.Service)
	}

	user.Karma = karma
	user.Level = level

	if err := service.cache.Delete(ctx, DBKeyUser(userID)); err != nil {
		log.Println(err)
	}

	err = redis_store.SetKarmaLeaderboard(ctx, service.redisDB, userID, models.KarmaScore(karma, level))
	if err != nil {
		log.Println(err)
	}

	return user, applied, nil
}

// creditAmount applies the premium multiplier to the whole credit, once,
// before any level carry.
func creditAmount(amount int, premium bool) int {
	if premium {
		return amount * PREMIUM_MULTIPLIER
	}
	return amount
}

// IsPremium derives the premium state from premium_until instead of trusting
// the stored flag. A stale flag is healed in place the first time it is read
// after expiry.
func (service *ServiceKarma) IsPremium(ctx context.Context, user *models.User) bool {
	if user == nil {
		return false
	}

	active := models.PremiumActive(time.Now(), user.PremiumUntil, user.IsPremium)
	if active != user.IsPremium {
		user.IsPremium = active
		if err := datastore.SyncUserPremiumFlag(ctx, service.postgresDB, user.ID, active); err != nil {
			log.Println(err)
		}
		if err := service.cache.Delete(ctx, DBKeyUser(user.ID)); err != nil {
			log.Println(err)
		}
	}

	return active
}

// GrantPremium extends the premium window by the given number of days. An
// active window extends from its current expiry, an expired one from now.
func (service *ServiceKarma) GrantPremium(ctx context.Context, userID int64, days int) (*models.User, error) {
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	now := time.Now()
	base := now
	if user.PremiumUntil != nil && user.PremiumUntil.After(now) {
		base = *user.PremiumUntil
	}
	until := base.AddDate(0, 0, days)

	err = datastore.UpdateUserPremium(ctx, service.postgresDB, userID, true, &until)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	user.IsPremium = true
	user.PremiumUntil = &until

	if err := service.cache.Delete(ctx, DBKeyUser(userID)); err != nil {
		log.Println(err)
	}

	return user, nil
}
