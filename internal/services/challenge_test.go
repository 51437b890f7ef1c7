package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"karmabot/internal/models"
)

// scripted driver results; bun interpolates arguments client-side, so every
// statement arrives as a complete SQL string.
type scriptedConn struct {
	execResults  []driver.Result
	queryResults []*scriptedRows
}

func newScriptedDB(conn *scriptedConn) *bun.DB {
	return bun.NewDB(sql.OpenDB(&scriptedConnector{conn: conn}), pgdialect.New())
}

type scriptedConnector struct{ conn *scriptedConn }

func (c *scriptedConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *scriptedConnector) Driver() driver.Driver                        { return scriptedDriver{} }

type scriptedDriver struct{}

func (scriptedDriver) Open(string) (driver.Conn, error) { return nil, io.EOF }

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) { return nil, io.EOF }
func (c *scriptedConn) Close() error                        { return nil }
func (c *scriptedConn) Begin() (driver.Tx, error)           { return scriptedTx{}, nil }

func (c *scriptedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(c.execResults) == 0 {
		return scriptedResult{}, nil
	}
	res := c.execResults[0]
	c.execResults = c.execResults[1:]
	return res, nil
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(c.queryResults) == 0 {
		return &scriptedRows{}, nil
	}
	rows := c.queryResults[0]
	c.queryResults = c.queryResults[1:]
	return rows, nil
}

type scriptedTx struct{}

func (scriptedTx) Commit() error   { return nil }
func (scriptedTx) Rollback() error { return nil }

type scriptedResult struct{ rows int64 }

func (r scriptedResult) LastInsertId() (int64, error) { return 0, nil }
func (r scriptedResult) RowsAffected() (int64, error) { return r.rows, nil }

type scriptedRows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *scriptedRows) Columns() []string { return r.columns }
func (r *scriptedRows) Close() error      { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}

func activeChallengeRows() *scriptedRows {
	return &scriptedRows{
		columns: []string{"id", "name", "status", "creator_id", "target_count", "prize_pool"},
		values: [][]driver.Value{
			{int64(1), "read daily", models.ChallengeStatusActive, int64(9), int64(5), int64(100)},
		},
	}
}

// A second join hits the conflict clause, inserts nothing, and must come back
// as ErrAlreadyJoined without paying the join bonus again.
func TestJoinTwiceReturnsAlreadyJoined(t *testing.T) {
	conn := &scriptedConn{
		queryResults: []*scriptedRows{activeChallengeRows()},
		execResults:  []driver.Result{scriptedResult{rows: 0}},
	}
	service := &ServiceChallenge{postgresDB: newScriptedDB(conn)}

	_, err := service.Join(context.Background(), &models.User{ID: 7}, 1)
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("Join() = %v, want ErrAlreadyJoined", err)
	}
}

func TestJoinFinishedChallengeRejected(t *testing.T) {
	rows := activeChallengeRows()
	rows.values[0][2] = models.ChallengeStatusFinished
	conn := &scriptedConn{queryResults: []*scriptedRows{rows}}
	service := &ServiceChallenge{postgresDB: newScriptedDB(conn)}

	_, err := service.Join(context.Background(), &models.User{ID: 7}, 1)
	if !errors.Is(err, ErrChallengeFinished) {
		t.Errorf("Join() = %v, want ErrChallengeFinished", err)
	}
}
