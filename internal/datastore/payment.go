package datastore

import (
	"context"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePayment(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Payment)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Payment)(nil)).Index("index_payment_user_id").IfNotExists().Column("user_id").Exec(ctx)
	return err
}

func CreatePayment(ctx context.Context, db bun.IDB, payment *models.Payment) (*models.Payment, error) {
	_, err := db.NewInsert().Model(payment).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func GetPaymentsByUser(ctx context.Context, db *bun.DB, userID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := db.NewSelect().Model(&payments).
		Where("user_id = ?", userID).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
