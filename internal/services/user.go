package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal/datastore"
	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/models"
	"karmabot/internal/pkg/caching"
)

const MessageNewReferral = `🎉 %s joined KarmaBot through your link!

You earned %d karma. Keep inviting friends to grow your karma.`

type ServiceUser struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache

	serviceKarma  *ServiceKarma
	bot           *Bot
	serviceConfig *ServiceConfig
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	serviceKarma, err := do.Invoke[*ServiceKarma](container)
	if err != nil {
		return nil, err
	}

	bot, err := do.Invoke[*Bot](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, db, rs, postgresDB, cache, serviceKarma, bot, serviceConfig}, nil
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, errorx.Wrap(errors.New("userAuth is nil"), errorx.Invalid)
	}

	user, _ := service.FindUserByID(ctx, userAuth.ID)
	if user != nil {
		if user.Username != strings.ToLower(userAuth.Username) ||
			user.FirstName != userAuth.FirstName ||
			user.LastName != userAuth.LastName {
			user.Username = strings.ToLower(userAuth.Username)
			user.FirstName = userAuth.FirstName
			user.LastName = userAuth.LastName
			if _, err := datastore.UpdateUserProfile(ctx, service.postgresDB, user); err != nil {
				log.Println(err)
			}
			_ = service.cache.Delete(ctx, DBKeyUser(user.ID))
		}
		return user, nil
	}

	now := time.Now()
	newUser := &models.User{
		ID:        userAuth.ID,
		Username:  strings.ToLower(userAuth.Username),
		FirstName: userAuth.FirstName,
		LastName:  userAuth.LastName,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log.Println("Create new user:", "user:", newUser.ID, "username:", newUser.Username)
	user, err := datastore.CreateUser(ctx, service.postgresDB, newUser)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	user.IsNewUser = true

	go func() {
		if err := service.bot.SendWelcomeMsg(user.ID); err != nil {
			log.Println(err)
		}
	}()

	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.postgresDB, userID)
	}
	return caching.UseCache(ctx, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) FindUserByIDNoCache(ctx context.Context, userID int64) (*models.User, error) {
	return datastore.FindUserByID(ctx, service.postgresDB, userID)
}

// LinkReferral ties the invitee to the inviter and pays the inviter the
// referral bonus. The first link wins; any later call is rejected without
// touching karma, so re-tapped deep links cannot double-pay.
func (service *ServiceUser) LinkReferral(ctx context.Context, invitee *models.User, inviterID int64) error {
	if invitee == nil {
		return errorx.Wrap(errors.New("invitee is nil"), errorx.Invalid)
	}

	if invitee.ID == inviterID {
		return errorx.Wrap(ErrSelfReferral, errorx.Invalid)
	}

	if invitee.InviterID != nil {
		return errorx.Wrap(ErrAlreadyReferred, errorx.Invalid)
	}

	inviter, err := service.FindUserByIDNoCache(ctx, inviterID)
	if err != nil {
		return errorx.Wrap(err, errorx.NotExist)
	}

	linked, err := datastore.AddInviteRef(ctx, service.postgresDB, invitee.ID, inviter.ID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	if !linked {
		return errorx.Wrap(ErrAlreadyReferred, errorx.Invalid)
	}

	bonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REF_BONUS, REF_BONUS_DEFAULT)
	_, applied, err := service.serviceKarma.AddKarma(ctx, inviter.ID, bonus, models.KarmaActionReferral)
	if err != nil {
		log.Println("referral bonus failed:", "inviter:", inviter.ID, err)
	}

	if err := redis_store.IncrReferralLeaderboard(ctx, service.redisDB, inviter.ID); err != nil {
		log.Println(err)
	}

	username := fmt.Sprintf("@%s", invitee.Username)
	if invitee.Username == "" {
		username = strings.TrimSpace(fmt.Sprintf("%s %s", invitee.FirstName, invitee.LastName))
	}

	go func() {
		ctx := context.Background()
		// at most one referral ping per minute per inviter
		last, err := redis_store.GetUserLastNotify(ctx, service.redisDB, inviter.ID)
		if err == nil && time.Since(last) < time.Minute {
			return
		}
		if err := service.bot.SendMsg(inviter.ID, fmt.Sprintf(MessageNewReferral, username, applied)); err != nil {
			log.Println(err)
			return
		}
		if err := redis_store.SetUserLastNotify(ctx, service.redisDB, inviter.ID, time.Now()); err != nil {
			log.Println(err)
		}
	}()

	_ = service.cache.Delete(ctx, DBKeyUser(invitee.ID))
	_ = service.cache.Delete(ctx, DBKeyUser(inviter.ID))

	log.Println("LinkReferral:", "invitee:", invitee.ID, "inviter:", inviter.ID)

	return nil
}

// ClaimDaily hands out the daily reward. Rewards lean small; the bigger tiers
// land rarely.
func (service *ServiceUser) ClaimDaily(ctx context.Context, userID int64) (int, error) {
	mutex := service.rs.NewMutex(LockKeyUserDaily(userID))
	if err := mutex.Lock(); err != nil {
		return 0, errorx.Wrap(ErrDailyClaimLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.NotExist)
	}

	now := time.Now()
	if user.LastDailyClaim != nil && now.Sub(*user.LastDailyClaim) < DAILY_COOLDOWN {
		return 0, errorx.Wrap(ErrDailyCooldown, errorx.Invalid)
	}

	min, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_MIN, DAILY_MIN_DEFAULT)
	max, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_MAX, DAILY_MAX_DEFAULT)
	amount := rollDailyReward(min, max)

	_, applied, err := service.serviceKarma.AddKarma(ctx, userID, amount, models.KarmaActionDaily)
	if err != nil {
		return 0, err
	}

	if err := datastore.UpdateUserLastDailyClaim(ctx, service.postgresDB, userID, now); err != nil {
		return applied, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyUser(userID))

	return applied, nil
}

// rollDailyReward picks a tier between min and max with weights skewed toward
// the low end.
func rollDailyReward(min, max int) int {
	if min >= max {
		return min
	}

	span := max - min
	chooser, err := weightedrand.NewChooser(
		weightedrand.NewChoice(min, 50),
		weightedrand.NewChoice(min+span/4, 30),
		weightedrand.NewChoice(min+span/2, 15),
		weightedrand.NewChoice(max, 5),
	)
	if err != nil {
		return min
	}

	return chooser.Pick()
}

type UserStats struct {
	User         *models.User       `json:"user"`
	TotalKarma   *models.TotalKarma `json:"total_karma"`
	KarmaRank    int64              `json:"karma_rank"`
	InviteeCount int                `json:"invitee_count"`
}

func (service *ServiceUser) Stats(ctx context.Context, userID int64) (*UserStats, error) {
	user, err := service.FindUserByID(ctx, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	total, err := datastore.GetTotalKarmaByUser(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	rank, err := redis_store.GetKarmaRank(ctx, service.redisDB, userID)
	if err != nil {
		rank = -1
	}

	count, err := datastore.CountInviteesByUserID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &UserStats{
		User:         user,
		TotalKarma:   total,
		KarmaRank:    rank,
		InviteeCount: count,
	}, nil
}
