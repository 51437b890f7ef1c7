package datastore

import (
	"context"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableHabit(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Habit)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Habit)(nil)).Index("index_habit_user_id").IfNotExists().Column("user_id").Exec(ctx)
	return err
}

func CreateHabit(ctx context.Context, db *bun.DB, habit *models.Habit) (*models.Habit, error) {
	_, err := db.NewInsert().Model(habit).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return habit, nil
}

func FindHabitByID(ctx context.Context, db *bun.DB, habitID int64) (*models.Habit, error) {
	var habit models.Habit
	err := db.NewSelect().Model(&habit).Where("id = ?", habitID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

func GetHabitsByUser(ctx context.Context, db *bun.DB, userID int64) ([]*models.Habit, error) {
	var habits []*models.Habit
	err := db.NewSelect().Model(&habits).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

// IncrementHabitProgress bumps progress and flips is_done once the target is
// reached. It returns the updated row so callers can tell whether this call
// crossed the boundary.
func IncrementHabitProgress(ctx context.Context, db *bun.DB, habitID, userID int64, delta int) (*models.Habit, error) {
	var habit models.Habit
	err := db.NewUpdate().Model(&habit).
		Set("progress = progress + ?", delta).
		Set("is_done = progress + ? >= target", delta).
		Where("id = ?", habitID).
		Where("user_id = ?", userID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &habit, nil
}

func DeleteHabit(ctx context.Context, db *bun.DB, habitID, userID int64) (bool, error) {
	res, err := db.NewDelete().Model((*models.Habit)(nil)).
		Where("id = ?", habitID).
		Where("user_id = ?", userID).
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
