package sqlbatch

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
)

type fakeDB struct {
	DB
	driver driver.Driver
}

func (f fakeDB) Driver() driver.Driver {
	return f.driver
}

type otherDriver struct {
	driver.Driver
}

func TestRun_UnknownDriver(t *testing.T) {
	err := Run(context.Background(), fakeDB{driver: otherDriver{}}, Script{Name: "x.sql", Text: "select 1"}, Options{})
	assert.EqualError(t, err, "failed to determine sql driver to run script x.sql")
}

func TestRun_WrapRequiresSQLServer(t *testing.T) {
	err := Run(context.Background(), fakeDB{driver: stdlib.GetDefaultDriver()}, Script{Text: "select 1"}, Options{Wrap: true})
	assert.ErrorIs(t, err, ErrWrapNotSupported)
}
