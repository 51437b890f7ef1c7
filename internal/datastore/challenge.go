package datastore

import (
	"context"
	"time"

	"karmabot/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func CreateTableChallenge(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Challenge)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Challenge)(nil)).Index("index_challenge_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Challenge)(nil)).Index("index_challenge_creator_id").IfNotExists().Column("creator_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.ChallengeParticipant)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// one row per (challenge, user); progress updates are row-local
	_, err = db.NewCreateIndex().Model((*models.ChallengeParticipant)(nil)).
		Index("index_challenge_participant_unique").IfNotExists().Unique().
		Column("challenge_id", "user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		alter table challenge
			add if not exists deadline timestamptz;
		alter table challenge
			add if not exists winners bigint[];
		alter table challenge
			add if not exists finished_at timestamptz;
		alter table challenge
			add if not exists is_public boolean default true;`).Exec(ctx)
	return err
}

func CreateChallenge(ctx context.Context, db *bun.DB, challenge *models.Challenge) (*models.Challenge, error) {
	_, err := db.NewInsert().Model(challenge).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

func FindChallengeByID(ctx context.Context, db *bun.DB, challengeID int64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := db.NewSelect().Model(&challenge).Where("id = ?", challengeID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func GetPublicActiveChallenges(ctx context.Context, db *bun.DB, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := db.NewSelect().Model(&challenges).
		Where("is_public = true").
		Where("status = ?", models.ChallengeStatusActive).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// GetChallengesByUser returns every challenge the user created or joined.
func GetChallengesByUser(ctx context.Context, db *bun.DB, userID int64) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := db.NewSelect().Model(&challenges).
		Where("creator_id = ?", userID).
		WhereOr("id IN (SELECT challenge_id FROM challenge_participant WHERE user_id = ?)", userID).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// GetExpiredActiveChallenges lists active challenges whose deadline is at or
// before now; the cron sweep finalizes them.
func GetExpiredActiveChallenges(ctx context.Context, db *bun.DB, now time.Time) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := db.NewSelect().Model(&challenges).
		Where("status = ?", models.ChallengeStatusActive).
		Where("deadline is not null").
		Where("deadline <= ?", now).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

func GetParticipants(ctx context.Context, db bun.IDB, challengeID int64) ([]*models.ChallengeParticipant, error) {
	var participants []*models.ChallengeParticipant
	err := db.NewSelect().Model(&participants).
		Where("challenge_id = ?", challengeID).
		Order("joined_at ASC").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return participants, nil
}

func FindParticipant(ctx context.Context, db *bun.DB, challengeID, userID int64) (*models.ChallengeParticipant, error) {
	var participant models.ChallengeParticipant
	err := db.NewSelect().Model(&participant).
		Where("challenge_id = ?", challengeID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &participant, nil
}

// InsertParticipant reports whether the row was actually created; a false
// return means the user had already joined.
func InsertParticipant(ctx context.Context, db *bun.DB, participant *models.ChallengeParticipant) (bool, error) {
	res, err := db.NewInsert().Model(participant).
		On("CONFLICT (challenge_id, user_id) DO NOTHING").
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

func DeleteParticipant(ctx context.Context, db *bun.DB, challengeID, userID int64) (bool, error) {
	res, err := db.NewDelete().Model((*models.ChallengeParticipant)(nil)).
		Where("challenge_id = ?", challengeID).
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

// IncrementParticipantProgress bumps a single participant row and returns
// the new progress. The status guard keeps a write racing a finalize from
// touching a finished challenge's rows. sql.ErrNoRows surfaces when the user
// never joined or the challenge finished under us.
func IncrementParticipantProgress(ctx context.Context, db *bun.DB, challengeID, userID int64, delta int) (int, error) {
	var progress int
	err := db.NewUpdate().Model((*models.ChallengeParticipant)(nil)).
		Set("progress = progress + ?", delta).
		Where("challenge_id = ?", challengeID).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM challenge WHERE id = ? AND status = ?)", challengeID, models.ChallengeStatusActive).
		Returning("progress").
		Scan(ctx, &progress)
	if err != nil {
		return 0, err
	}

	return progress, nil
}

// FinishChallenge performs the atomic check-and-transition: the status
// predicate in the WHERE clause is re-checked by the database under the same
// statement that writes the terminal state. Zero rows affected means another
// finalizer won the race.
func FinishChallenge(ctx context.Context, db bun.IDB, challengeID int64, winners []int64, finishedAt time.Time) (bool, error) {
	if winners == nil {
		winners = []int64{}
	}
	res, err := db.NewUpdate().Model((*models.Challenge)(nil)).
		Set("status = ?", models.ChallengeStatusFinished).
		Set("winners = ?", pgdialect.Array(winners)).
		Set("finished_at = ?", finishedAt).
		Where("id = ?", challengeID).
		Where("status = ?", models.ChallengeStatusActive).
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
