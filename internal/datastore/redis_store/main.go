package redis_store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"karmabot/internal"
	"karmabot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Drafts abandoned mid-conversation expire on their own.
	CHALLENGE_DRAFT_TTL = 30 * time.Minute
)

func dbKeyChallengeDraft(userID int64) string {
	return fmt.Sprintf("challenge_draft:%d", userID)
}

func dbKeyKarmaLeaderboard() string {
	return "leaderboard:karma"
}

func dbKeyReferralLeaderboard() string {
	return "leaderboard:referral"
}

func dbKeyInvoiceMessage(invoiceID string) string {
	return fmt.Sprintf("invoice:%s", strings.ToLower(invoiceID))
}

func dbKeyUserLastNotify(userID int64) string {
	return fmt.Sprintf("user:%d:last_notify", userID)
}

func GetChallengeDraft(ctx context.Context, cmd redis.Cmdable, userID int64) (*internal.ChallengeDraft, error) {
	var v *internal.ChallengeDraft
	b, err := cmd.Get(ctx, dbKeyChallengeDraft(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SaveChallengeDraft(ctx context.Context, cmd redis.Cmdable, v *internal.ChallengeDraft) (*internal.ChallengeDraft, error) {
	if v.UserID == 0 {
		return nil, errors.New("invalid draft")
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}

	err = cmd.Set(ctx, dbKeyChallengeDraft(v.UserID), b, CHALLENGE_DRAFT_TTL).Err()
	if err != nil {
		return nil, err
	}

	return v, nil
}

func DeleteChallengeDraft(ctx context.Context, cmd redis.Cmdable, userID int64) error {
	return cmd.Del(ctx, dbKeyChallengeDraft(userID)).Err()
}

func SetKarmaLeaderboard(ctx context.Context, cmd redis.Cmdable, userID int64, score int) error {
	return cmd.ZAdd(ctx, dbKeyKarmaLeaderboard(), redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err()
}

func GetKarmaLeaderboard(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.LeaderboardItem, error) {
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyKarmaLeaderboard(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			UserID: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

func GetKarmaRank(ctx context.Context, cmd redis.Cmdable, userID int64) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyKarmaLeaderboard(), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return -1, err
	}

	return rank, nil
}

func IncrReferralLeaderboard(ctx context.Context, cmd redis.Cmdable, userID int64) error {
	return cmd.ZIncrBy(ctx, dbKeyReferralLeaderboard(), 1, strconv.FormatInt(userID, 10)).Err()
}

func GetReferralLeaderboard(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.LeaderboardItem, error) {
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyReferralLeaderboard(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			UserID: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

// InvoiceRecord ties a pending Stars invoice to the SKU and the message that
// carried it.
type InvoiceRecord struct {
	SKU       string `msgpack:"sku"`
	UserID    int64  `msgpack:"user_id"`
	MessageID string `msgpack:"message_id"`
	ChatID    int64  `msgpack:"chat_id"`
}

func SetInvoiceRecord(ctx context.Context, cmd redis.Cmdable, invoiceID string, record *InvoiceRecord) error {
	b, err := msgpack.Marshal(record)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyInvoiceMessage(invoiceID), b, 24*time.Hour).Err()
}

func GetInvoiceRecord(ctx context.Context, cmd redis.Cmdable, invoiceID string) (*InvoiceRecord, error) {
	var v *InvoiceRecord
	b, err := cmd.Get(ctx, dbKeyInvoiceMessage(invoiceID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SetUserLastNotify(ctx context.Context, cmd redis.Cmdable, userID int64, lastNotify time.Time) error {
	return cmd.Set(ctx, dbKeyUserLastNotify(userID), lastNotify.Format(time.RFC3339), 0).Err()
}

func GetUserLastNotify(ctx context.Context, cmd redis.Cmdable, userID int64) (time.Time, error) {
	result, err := cmd.Get(ctx, dbKeyUserLastNotify(userID)).Result()
	if err != nil {
		return time.Time{}, err
	}

	return time.Parse(time.RFC3339, result)
}
