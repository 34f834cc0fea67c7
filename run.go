package sqlbatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-sql/sqlexp"
	"github.com/jackc/pgx/v5/stdlib"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/sirupsen/logrus"
	"github.com/vippsas/sqlbatch/sqlcmd"
	"github.com/vippsas/sqlbatch/superbatch"
)

var ErrWrapNotSupported = errors.New("the error-handling wrapper can only be used with SQL Server")

// Script is the text of a sqlcmd-style script. Name is used in positions and
// error messages.
type Script struct {
	Name string
	Text string
}

// Options that affect how a script is run; pass an empty struct to get
// default options.
type Options struct {
	// Variables defines the SqlCmd variables the script starts with.
	Variables map[string]string

	// Files reads :r includes; the operating system when nil.
	Files sqlcmd.FileReader

	// Wrap runs all batches as one superbatch, so a failing batch has its
	// text printed by the server before the error is returned.
	Wrap bool

	Logger logrus.FieldLogger
}

// Run preprocesses script and executes its batches in order on a single
// connection, so that session state carries over from one batch to the next.
// Batches are executed as they are produced; if preprocessing fails halfway,
// the batches before the failure have already run.
func Run(ctx context.Context, dbc DB, script Script, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("script", script.Name)

	var isMSSQL bool
	switch dbc.Driver().(type) {
	case *mssql.Driver:
		isMSSQL = true
	case *stdlib.Driver:
	default:
		return fmt.Errorf("failed to determine sql driver to run script %s", script.Name)
	}
	if opts.Wrap && !isMSSQL {
		return ErrWrapNotSupported
	}

	p := sqlcmd.New()
	p.Variables.Replace(opts.Variables)
	p.Files = opts.Files
	p.Logger = logger

	conn, err := dbc.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	r := p.Process(script.Name, script.Text)

	if opts.Wrap {
		query, err := superbatch.Compose(r.All())
		if err != nil {
			return err
		}
		if query == "" {
			return nil
		}
		logger.Debug("executing superbatch")
		return execWithMessages(ctx, conn, query, logger)
	}

	for r.Next() {
		b := Batch{StartPos: r.Pos(), Lines: r.Text()}
		logger.WithField("pos", b.StartPos.String()).Debug("executing batch")
		if isMSSQL {
			err = execWithMessages(ctx, conn, b.Lines, logger)
		} else {
			_, err = conn.ExecContext(ctx, b.Lines)
		}
		if err != nil {
			logBatch(logger, b)
			var sqlerr mssql.Error
			if errors.As(err, &sqlerr) {
				return MSSQLUserError{
					Wrapped: sqlerr,
					Batch:   b,
				}
			}
			return fmt.Errorf("failed to execute batch at %s: %w", b.StartPos, err)
		}
	}
	return r.Err()
}

// logBatch logs the text of a failed batch the same way the superbatch
// CATCH block prints it.
func logBatch(logger logrus.FieldLogger, b Batch) {
	for _, msg := range superbatch.PrintMessages(b.Lines) {
		logger.Error(msg)
	}
}

// execWithMessages runs query on SQL Server and forwards PRINT output to the
// logger. The first error raised by the server is returned.
func execWithMessages(ctx context.Context, conn *sql.Conn, query string, logger logrus.FieldLogger) error {
	retmsg := &sqlexp.ReturnMessage{}
	rows, err := conn.QueryContext(ctx, query, retmsg)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	var firstErr error
	for active := true; active; {
		switch m := retmsg.Message(ctx).(type) {
		case nil:
			active = false
		case sqlexp.MsgNotice:
			logger.Info(fmt.Sprint(m.Message))
		case sqlexp.MsgError:
			if firstErr == nil {
				firstErr = m.Error
			}
		case sqlexp.MsgRowsAffected:
			logger.WithField("rows", m.Count).Debug("rows affected")
		case sqlexp.MsgNext:
			for rows.Next() {
			}
		case sqlexp.MsgNextResultSet:
			active = rows.NextResultSet()
		}
	}
	if firstErr == nil {
		firstErr = rows.Err()
	}
	return firstErr
}
