package sqlbatch

import (
	"bytes"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/vippsas/sqlbatch/sqlcmd"
)

// Batch is one preprocessed batch together with where it started in the
// script or included file.
type Batch struct {
	StartPos sqlcmd.Pos
	Lines    string
}

// LineNumberInInput maps a line number reported by SQL Server for the batch
// to a line number in StartPos.File. Lines added by multi-line variable
// values or :r includes are not accounted for.
func (b Batch) LineNumberInInput(outputline int) int {
	return outputline + b.StartPos.Line - 1
}

type MSSQLUserError struct {
	Wrapped mssql.Error
	Batch   Batch
}

func (s MSSQLUserError) Error() string {
	var buf bytes.Buffer

	if _, fmterr := fmt.Fprintf(&buf, "\n"); fmterr != nil {
		panic(fmterr)
	}
	for _, item := range s.Wrapped.All {
		if _, fmterr := fmt.Fprintf(&buf, "\n%s:%d (%s): %s",
			s.Batch.StartPos.File,
			s.Batch.LineNumberInInput(int(item.LineNo)),
			item.ProcName,
			item.Message); fmterr != nil {
			panic(fmterr)
		}
	}
	return buf.String()
}

func (s MSSQLUserError) Unwrap() error {
	return s.Wrapped
}
