package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"karmabot/internal"
	"karmabot/internal/datastore"
	"karmabot/internal/datastore/redis_store"
	"karmabot/internal/interfaces"
	"karmabot/internal/models"
	"karmabot/internal/pkg/caching"
)

const AchievementCodeChallengeWin = "challenge_win"

type ServiceChallenge struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache

	serviceKarma  *ServiceKarma
	serviceConfig *ServiceConfig
	bot           *Bot
	limiter       interfaces.Limiter
}

func NewServiceChallenge(container *do.Injector) (*ServiceChallenge, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	bot, err := do.Invoke[*Bot](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceChallenge{container, db, rs, postgresDB, cache, serviceKarma, serviceConfig, bot, limiter}, nil
}

// StartDraft opens a challenge creation session for the user. Creation is a
// premium feature.
func (service *ServiceChallenge) StartDraft(ctx context.Context, user *models.User) (*internal.ChallengeDraft, error) {
	if !service.serviceKarma.IsPremium(ctx, user) {
		return nil, errorx.Wrap(errors.New("challenge creation requires premium"), errorx.Invalid)
	}

	draft := &internal.ChallengeDraft{
		UserID:    user.ID,
		Step:      internal.DraftStepName,
		StartedAt: time.Now(),
	}

	return redis_store.SaveChallengeDraft(ctx, service.redisDB, draft)
}

// AdvanceDraft feeds one input into the user's open draft and returns the
// updated draft. A finished draft is persisted as a live challenge and the
// session is dropped.
func (service *ServiceChallenge) AdvanceDraft(ctx context.Context, user *models.User, input string) (*internal.ChallengeDraft, *models.Challenge, error) {
	mutex := service.rs.NewMutex(LockKeyUserDraft(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, nil, errorx.Wrap(ErrDraftLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	draft, err := redis_store.GetChallengeDraft(ctx, service.redisDB, user.ID)
	if err != nil {
		return nil, nil, errorx.Wrap(errors.New("no draft in progress"), errorx.NotExist)
	}

	if !draft.Advance(time.Now(), input) {
		return draft, nil, errorx.Wrap(errors.New("input does not fit the current step"), errorx.Validation)
	}

	if !draft.Done() {
		draft, err = redis_store.SaveChallengeDraft(ctx, service.redisDB, draft)
		return draft, nil, err
	}

	challenge, err := service.Create(ctx, user, draft)
	if err != nil {
		return draft, nil, err
	}

	if err := redis_store.DeleteChallengeDraft(ctx, service.redisDB, user.ID); err != nil {
		log.Println(err)
	}

	return draft, challenge, nil
}

func (service *ServiceChallenge) Create(ctx context.Context, creator *models.User, draft *internal.ChallengeDraft) (*models.Challenge, error) {
	if !service.serviceKarma.IsPremium(ctx, creator) {
		return nil, errorx.Wrap(errors.New("challenge creation requires premium"), errorx.Invalid)
	}

	if draft.Name == "" || draft.TargetCount <= 0 {
		return nil, errorx.Wrap(errors.New("invalid draft"), errorx.Validation)
	}

	challenge := &models.Challenge{
		Name:        draft.Name,
		Description: draft.Description,
		CreatorID:   creator.ID,
		TargetCount: draft.TargetCount,
		Deadline:    draft.Deadline,
		PrizePool:   draft.PrizePool,
		IsPublic:    draft.IsPublic,
		Status:      models.ChallengeStatusActive,
		Winners:     []int64{},
		CreatedAt:   time.Now(),
	}

	challenge, err := datastore.CreateChallenge(ctx, service.postgresDB, challenge)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyPublicChallenges())

	log.Println("Challenge created:", "id:", challenge.ID, "creator:", creator.ID)

	return challenge, nil
}

func (service *ServiceChallenge) FindChallengeByID(ctx context.Context, challengeID int64) (*models.Challenge, error) {
	challenge, err := datastore.FindChallengeByID(ctx, service.postgresDB, challengeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("challenge not found"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return challenge, nil
}

// Details loads the challenge with its participants in join order.
func (service *ServiceChallenge) Details(ctx context.Context, challengeID int64) (*models.Challenge, error) {
	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	participants, err := datastore.GetParticipants(ctx, service.postgresDB, challengeID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	challenge.Participants = participants

	return challenge, nil
}

func (service *ServiceChallenge) PublicChallenges(ctx context.Context) ([]*models.Challenge, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	callback := func() ([]*models.Challenge, error) {
		return datastore.GetPublicActiveChallenges(ctx, service.postgresDB, limit)
	}
	return caching.UseCache(ctx, service.cache, DBKeyPublicChallenges(), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceChallenge) MyChallenges(ctx context.Context, userID int64) ([]*models.Challenge, error) {
	challenges, err := datastore.GetChallengesByUser(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return challenges, nil
}

// Join adds the user to an active challenge and pays the join bonus. The
// participant row is created at progress zero; an existing row means the user
// already joined and nothing is paid again.
func (service *ServiceChallenge) Join(ctx context.Context, user *models.User, challengeID int64) (*models.ChallengeParticipant, error) {
	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.Active() {
		return nil, errorx.Wrap(ErrChallengeFinished, errorx.Invalid)
	}

	participant := &models.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      user.ID,
		Progress:    0,
		JoinedAt:    time.Now(),
	}

	inserted, err := datastore.InsertParticipant(ctx, service.postgresDB, participant)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !inserted {
		return nil, errorx.Wrap(ErrAlreadyJoined, errorx.Invalid)
	}

	bonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_KARMA_PUBLIC_JOIN, KARMA_PUBLIC_JOIN_DEFAULT)
	if _, _, err := service.serviceKarma.AddKarma(ctx, user.ID, bonus, models.KarmaActionJoinChallenge); err != nil {
		log.Println("join bonus failed:", "user:", user.ID, err)
	}

	return participant, nil
}

// Leave removes the user from an active challenge. The join bonus stays; the
// forfeit is only the shot at the prize.
func (service *ServiceChallenge) Leave(ctx context.Context, user *models.User, challengeID int64) error {
	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return err
	}

	if !challenge.Active() {
		return errorx.Wrap(ErrChallengeFinished, errorx.Invalid)
	}

	removed, err := datastore.DeleteParticipant(ctx, service.postgresDB, challengeID, user.ID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	if !removed {
		return errorx.Wrap(ErrNotAParticipant, errorx.Invalid)
	}

	return nil
}

// IncrementProgress bumps the user's own counter by one. Reaching the target
// triggers finalization immediately instead of waiting for the deadline.
func (service *ServiceChallenge) IncrementProgress(ctx context.Context, user *models.User, challengeID int64) (int, *models.Challenge, error) {
	err := service.limiter.Allow(ctx, LimitKeyChallengeProgress(user.ID), redis_rate.PerMinute(PROGRESS_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		if err.Error() == limiter.ErrRateLimited.Error() {
			return 0, nil, errorx.Wrap(err, errorx.RateLimiting)
		}
		return 0, nil, err
	}

	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return 0, nil, err
	}

	if !challenge.Active() {
		return 0, nil, errorx.Wrap(ErrChallengeFinished, errorx.Invalid)
	}

	progress, err := datastore.IncrementParticipantProgress(ctx, service.postgresDB, challengeID, user.ID, 1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, errorx.Wrap(ErrNotAParticipant, errorx.Invalid)
		}
		return 0, nil, errorx.Wrap(err, errorx.Service)
	}

	if challenge.TargetCount > 0 && progress >= challenge.TargetCount {
		finished, err := service.Finalize(ctx, challengeID)
		if err != nil {
			// a concurrent finalizer beat us; the progress still counted
			if !errors.Is(err, ErrChallengeFinished) {
				log.Println("auto finalize failed:", "challenge:", challengeID, err)
			}
			return progress, nil, nil
		}
		return progress, finished, nil
	}

	return progress, nil, nil
}

// FinishByCreator is the manual finalize path. Only the creator may trigger
// it, and the same eligibility rule applies: no winners and a live deadline
// still refuse to settle.
func (service *ServiceChallenge) FinishByCreator(ctx context.Context, user *models.User, challengeID int64) (*models.Challenge, error) {
	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if challenge.CreatorID != user.ID {
		return nil, errorx.Wrap(ErrPermissionDenied, errorx.Invalid)
	}

	return service.Finalize(ctx, challengeID)
}

// Finalize settles an active challenge exactly once. The winner set and the
// split are computed under a per-challenge lock, the terminal transition is a
// conditional update re-checked by the database, and payouts run only after
// the transition committed. A challenge with no winners finalizes only once
// its deadline has passed, and pays nothing.
func (service *ServiceChallenge) Finalize(ctx context.Context, challengeID int64) (*models.Challenge, error) {
	mutex := service.rs.NewMutex(LockKeyChallengeFinalize(challengeID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrChallengeFinalizeLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	challenge, err := service.FindChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.Active() {
		return nil, errorx.Wrap(ErrChallengeFinished, errorx.Invalid)
	}

	now := time.Now()
	var winners []int64
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		participants, err := datastore.GetParticipants(ctx, tx, challengeID)
		if err != nil {
			return err
		}

		winners = models.ComputeWinners(participants, challenge.TargetCount)
		if !challenge.FinalizeEligible(winners, now) {
			return ErrNotYetEligible
		}

		finished, err := datastore.FinishChallenge(ctx, tx, challengeID, winners, now)
		if err != nil {
			return err
		}
		if !finished {
			return ErrChallengeFinished
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotYetEligible) || errors.Is(err, ErrChallengeFinished) {
			return nil, errorx.Wrap(err, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	challenge.Status = models.ChallengeStatusFinished
	challenge.Winners = winners
	challenge.FinishedAt = &now

	_ = service.cache.Delete(ctx, DBKeyChallenge(challengeID))
	_ = service.cache.Delete(ctx, DBKeyPublicChallenges())

	// Payouts happen outside the transaction: the terminal state already
	// committed, so a crash here loses at most the remaining credits, never
	// settles twice.
	commission, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_COMMISSION_PCT, COMMISSION_PCT_DEFAULT)
	_, perWinner := models.SplitPrizePool(challenge.PrizePool, commission, len(winners))
	for _, winnerID := range winners {
		if perWinner > 0 {
			if _, _, err := service.serviceKarma.AddKarma(ctx, winnerID, perWinner, models.KarmaActionChallengeWin); err != nil {
				log.Println("prize payout failed:", "challenge:", challengeID, "winner:", winnerID, err)
				continue
			}
		}

		if _, err := datastore.InsertAchievement(ctx, service.postgresDB, &models.Achievement{
			UserID:      winnerID,
			Code:        AchievementCodeChallengeWin,
			Title:       "🏆 Challenger",
			Description: "Won a challenge",
			EarnedAt:    now,
		}); err != nil {
			log.Println(err)
		}

		go func(id int64) {
			if err := service.bot.SendMsg(id, "🏁 Challenge finished! Your prize karma has been credited."); err != nil {
				log.Println(err)
			}
		}(winnerID)
	}

	log.Println("Challenge finalized:", "id:", challengeID, "winners:", len(winners), "perWinner:", perWinner)

	return challenge, nil
}

// FinalizeExpired is the deadline sweep run by the cron worker.
func (service *ServiceChallenge) FinalizeExpired(ctx context.Context) error {
	challenges, err := datastore.GetExpiredActiveChallenges(ctx, service.postgresDB, time.Now())
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	for _, challenge := range challenges {
		if _, err := service.Finalize(ctx, challenge.ID); err != nil {
			if errors.Is(err, ErrChallengeFinished) {
				continue
			}
			log.Println("deadline finalize failed:", "challenge:", challenge.ID, err)
		}
	}

	return nil
}
