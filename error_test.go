package sqlbatch

import (
	"errors"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/vippsas/sqlbatch/sqlcmd"
)

func TestMSSQLUserError(t *testing.T) {
	batch := Batch{
		StartPos: sqlcmd.Pos{File: "deploy.sql", Line: 10, Col: 1},
		Lines:    "select 1\nselect 1/0\n",
	}
	assert.Equal(t, 11, batch.LineNumberInInput(2))

	sqlerr := mssql.Error{
		Number:  8134,
		Message: "Divide by zero error encountered.",
		LineNo:  2,
	}
	sqlerr.All = []mssql.Error{sqlerr}
	err := error(MSSQLUserError{Wrapped: sqlerr, Batch: batch})

	assert.Equal(t, "\n\ndeploy.sql:11 (): Divide by zero error encountered.", err.Error())

	var unwrapped mssql.Error
	assert.True(t, errors.As(err, &unwrapped))
	assert.Equal(t, int32(8134), unwrapped.Number)
}
