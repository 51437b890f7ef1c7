package datastore

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"karmabot/internal/models"
)

// The terminal transition only counts when the row was still active; a second
// finalizer sees zero rows affected and must report the race.
func TestFinishChallengeExactlyOnce(t *testing.T) {
	conn := &fakeConn{execResults: []driver.Result{
		fakeResult{rows: 1},
		fakeResult{rows: 0},
	}}
	db := newFakeDB(conn)
	ctx := context.Background()
	now := time.Now()

	finished, err := FinishChallenge(ctx, db, 1, []int64{7}, now)
	if err != nil {
		t.Fatalf("first finish: %v", err)
	}
	if !finished {
		t.Error("first finish must win the transition")
	}

	finished, err = FinishChallenge(ctx, db, 1, []int64{7}, now)
	if err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if finished {
		t.Error("second finish must lose to the first")
	}

	for _, stmt := range conn.statements {
		if !strings.Contains(stmt, "status = 'active'") {
			t.Errorf("finish statement lacks the active-status guard: %s", stmt)
		}
	}
}

func TestInsertParticipantIdempotent(t *testing.T) {
	// the autoincrement pk makes bun append RETURNING "id", so the insert
	// runs through QueryContext and rows affected = rows returned
	conn := &fakeConn{queryResults: []*fakeRows{
		{columns: []string{"id"}, values: [][]driver.Value{{int64(1)}}},
		{columns: []string{"id"}},
	}}
	db := newFakeDB(conn)
	ctx := context.Background()

	participant := &models.ChallengeParticipant{ChallengeID: 1, UserID: 7, JoinedAt: time.Now()}

	inserted, err := InsertParticipant(ctx, db, participant)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if !inserted {
		t.Error("first join must insert")
	}

	inserted, err = InsertParticipant(ctx, db, participant)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if inserted {
		t.Error("second join must hit the conflict clause and insert nothing")
	}

	for _, stmt := range conn.statements {
		if !strings.Contains(stmt, "DO NOTHING") {
			t.Errorf("join statement lacks the conflict clause: %s", stmt)
		}
	}
}

// Progress writes carry a status guard so a row cannot change after the
// challenge finished under a concurrent finalize.
func TestIncrementParticipantProgressStatusGuard(t *testing.T) {
	conn := &fakeConn{queryResults: []*fakeRows{
		{columns: []string{"progress"}, values: [][]driver.Value{{int64(3)}}},
	}}
	db := newFakeDB(conn)

	progress, err := IncrementParticipantProgress(context.Background(), db, 1, 7, 1)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if progress != 3 {
		t.Errorf("progress = %d, want 3", progress)
	}

	if len(conn.statements) != 1 {
		t.Fatalf("statements = %d, want 1", len(conn.statements))
	}
	stmt := conn.statements[0]
	if !strings.Contains(stmt, "EXISTS") || !strings.Contains(stmt, "status = 'active'") {
		t.Errorf("update lacks the active-status guard: %s", stmt)
	}
}
