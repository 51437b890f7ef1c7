package datastore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// fakeConn scripts driver results so the conditional-update guards can be
// exercised without a live database. bun interpolates arguments client-side,
// so every statement arrives here as a complete SQL string.
type fakeConn struct {
	execResults  []driver.Result
	queryResults []*fakeRows
	statements   []string
}

func newFakeDB(conn *fakeConn) *bun.DB {
	sqldb := sql.OpenDB(&fakeConnector{conn: conn})
	return bun.NewDB(sqldb, pgdialect.New())
}

type fakeConnector struct{ conn *fakeConn }

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return nil, io.EOF }

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, io.EOF }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return fakeTx{}, nil }

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.statements = append(c.statements, query)
	if len(c.execResults) == 0 {
		return fakeResult{}, nil
	}
	res := c.execResults[0]
	c.execResults = c.execResults[1:]
	return res, nil
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.statements = append(c.statements, query)
	if len(c.queryResults) == 0 {
		return &fakeRows{}, nil
	}
	rows := c.queryResults[0]
	c.queryResults = c.queryResults[1:]
	return rows, nil
}

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeRows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
