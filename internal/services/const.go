package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUserKarmaLock = errors.New("user karma locked")
var ErrChallengeFinalizeLock = errors.New("challenge finalize locked")
var ErrDailyClaimLock = errors.New("daily claim locked")
var ErrDraftLock = errors.New("draft locked")

var ErrChallengeFinished = errors.New("challenge already finished")
var ErrAlreadyJoined = errors.New("already joined")
var ErrNotAParticipant = errors.New("not a participant")
var ErrPermissionDenied = errors.New("only the creator can do this")
var ErrNotYetEligible = errors.New("deadline not reached and target not met")
var ErrSelfReferral = errors.New("user cannot invite himself")
var ErrAlreadyReferred = errors.New("user already has an inviter")
var ErrDailyCooldown = errors.New("daily reward already claimed")

const (
	CONFIG_SERVER_MODE             = "SERVER_MODE"
	CONFIG_REF_BONUS               = "REF_BONUS"
	CONFIG_DAILY_MIN               = "DAILY_MIN"
	CONFIG_DAILY_MAX               = "DAILY_MAX"
	CONFIG_KARMA_HABIT_COMPLETE    = "KARMA_HABIT_COMPLETE"
	CONFIG_KARMA_PUBLIC_JOIN       = "KARMA_PUBLIC_JOIN"
	CONFIG_COMMISSION_PCT          = "COMMISSION_PCT"
	CONFIG_PREMIUM_DAYS            = "PREMIUM_DAYS"
	CONFIG_LEADERBOARD_LIMIT       = "LEADERBOARD_LIMIT"
	CONFIG_REF_LEADERBOARD_LIMIT   = "REF_LEADERBOARD_LIMIT"
	CONFIG_TEXT_NEW_USER           = "TEXT_NEW_USER"
	CONFIG_PREMIUM_PRICE_STARS     = "PREMIUM_PRICE_STARS"
	CONFIG_KARMA_PACK_PRICE_STARS  = "KARMA_PACK_PRICE_STARS"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	REF_BONUS_DEFAULT            = 50
	DAILY_MIN_DEFAULT            = 10
	DAILY_MAX_DEFAULT            = 50
	KARMA_HABIT_COMPLETE_DEFAULT = 50
	KARMA_PUBLIC_JOIN_DEFAULT    = 10
	COMMISSION_PCT_DEFAULT       = 15
	PREMIUM_DAYS_DEFAULT         = 30
	PREMIUM_MULTIPLIER           = 2

	LEADERBOARD_DEFAULT_LIMIT          = 20
	REFERRAL_LEADERBOARD_DEFAULT_LIMIT = 20

	PREMIUM_PRICE_STARS_DEFAULT    = 100
	KARMA_PACK_PRICE_STARS_DEFAULT = 50
	KARMA_PACK_AMOUNT              = 100

	DAILY_COOLDOWN = 24 * time.Hour

	PROGRESS_RATE_LIMIT_PER_MINUTE = 30

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute
	CACHE_TTL_15_MINS   = 15 * time.Minute
	CACHE_TTL_1_HOUR    = 1 * time.Hour
	CACHE_TTL_1_DAY     = 24 * time.Hour
)

func LockKeyUserKarma(userID int64) string {
	return fmt.Sprintf("lock:user-karma:%d", userID)
}

func LockKeyChallengeFinalize(challengeID int64) string {
	return fmt.Sprintf("lock:challenge-finalize:%d", challengeID)
}

func LockKeyUserDaily(userID int64) string {
	return fmt.Sprintf("lock:user-daily:%d", userID)
}

func LockKeyUserDraft(userID int64) string {
	return fmt.Sprintf("lock:user-draft:%d", userID)
}

func LimitKeyChallengeProgress(userID int64) string {
	return fmt.Sprintf("limit:challenge-progress:%d", userID)
}

// db
func DBKeyUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func DBKeyChallenge(challengeID int64) string {
	return fmt.Sprintf("challenge:%d", challengeID)
}

func DBKeyPublicChallenges() string {
	return "challenges:public"
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyUserHabits(userID int64) string {
	return fmt.Sprintf("user:%d:habits", userID)
}
