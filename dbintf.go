package sqlbatch

import (
	"context"
	"database/sql"
	"database/sql/driver"
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Conn(ctx context.Context) (*sql.Conn, error)
	Driver() driver.Driver
}

var _ DB = &sql.DB{}
