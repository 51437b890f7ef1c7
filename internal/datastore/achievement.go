package datastore

import (
	"context"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableAchievement(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Achievement)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Achievement)(nil)).
		Index("index_achievement_user_code").IfNotExists().Unique().
		Column("user_id", "code").Exec(ctx)
	return err
}

// InsertAchievement is idempotent per (user, code); granting the same badge
// twice is a no-op.
func InsertAchievement(ctx context.Context, db bun.IDB, achievement *models.Achievement) (bool, error) {
	res, err := db.NewInsert().Model(achievement).
		On("CONFLICT (user_id, code) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func GetAchievementsByUser(ctx context.Context, db *bun.DB, userID int64) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	err := db.NewSelect().Model(&achievements).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return achievements, nil
}
