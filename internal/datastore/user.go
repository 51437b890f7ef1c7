package datastore

import (
	"context"
	"strings"
	"time"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_inviter_id").IfNotExists().Column("inviter_id").Exec(ctx)
	if err != nil {
		return err
	}

	// additive migrations for rows created before these columns existed
	_, err = db.NewRaw(`
		alter table "user"
			add if not exists premium_until timestamptz;
		alter table "user"
			add if not exists last_daily_claim timestamptz;
		alter table "user"
			add if not exists level int default 1;
		alter table "user"
    		alter column created_at set default current_timestamp;`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db *bun.DB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserProfile(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("username = ?", strings.ToLower(user.Username)).
		Set("first_name = ?", user.FirstName).
		Set("last_name = ?", user.LastName).
		Set("updated_at = ?", time.Now()).
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserKarma persists the accumulator result; both columns move in the
// same statement so the carry stays consistent.
func UpdateUserKarma(ctx context.Context, db bun.IDB, userID int64, karma, level int) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("karma = ?", karma).
		Set("level = ?", level).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func UpdateUserPremium(ctx context.Context, db *bun.DB, userID int64, isPremium bool, until *time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_premium = ?", isPremium).
		Set("premium_until = ?", until).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// SyncUserPremiumFlag writes back only the cached flag, used by the lazy
// resolver when it notices the flag is stale.
func SyncUserPremiumFlag(ctx context.Context, db *bun.DB, userID int64, isPremium bool) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_premium = ?", isPremium).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func UpdateUserLastDailyClaim(ctx context.Context, db *bun.DB, userID int64, claimedAt time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_daily_claim = ?", claimedAt).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// AddInviteRef links the invitee to the inviter only when no inviter is set
// yet; the conditional update is what makes the first write win. Returns
// whether the link was actually created.
func AddInviteRef(ctx context.Context, db *bun.DB, inviteeID int64, inviterID int64) (bool, error) {
	linked := false
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("inviter_id = ?", inviterID).
			Where("id = ?", inviteeID).
			Where("inviter_id is null").
			Exec(ctx)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		linked = true

		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("total_invites = total_invites + 1").
			Where("id = ?", inviterID).
			Exec(ctx)
		return err
	})

	return linked, err
}

func GetTopUsersByKarma(ctx context.Context, db *bun.DB, limit int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).
		Order("level DESC").
		Order("karma DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func GetUsersByIDs(ctx context.Context, db *bun.DB, ids []int64) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := db.NewSelect().Model(&users).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func CountInviteesByUserID(ctx context.Context, db *bun.DB, userID int64) (int, error) {
	count, err := db.NewSelect().Model((*models.User)(nil)).Where("inviter_id = ?", userID).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}
