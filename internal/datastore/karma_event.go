package datastore

import (
	"context"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableKarmaEvent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.KarmaEvent)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.KarmaEvent)(nil)).Index("index_karma_event_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.KarmaEvent)(nil)).Index("index_karma_event_action").IfNotExists().Column("action").Exec(ctx)
	return err
}

func InsertKarmaEvent(ctx context.Context, db bun.IDB, event *models.KarmaEvent) error {
	_, err := db.NewInsert().Model(event).Exec(ctx)
	return err
}

func GetKarmaEventsByUser(ctx context.Context, db *bun.DB, userID int64, limit int) ([]*models.KarmaEvent, error) {
	var events []*models.KarmaEvent
	err := db.NewSelect().Model(&events).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func GetTotalKarmaByUser(ctx context.Context, db *bun.DB, userID int64) (*models.TotalKarma, error) {
	total := models.TotalKarma{UserID: userID}
	err := db.NewSelect().Model((*models.KarmaEvent)(nil)).
		ColumnExpr("coalesce(sum(amount), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &total.TotalKarma)
	if err != nil {
		return nil, err
	}

	return &total, nil
}
