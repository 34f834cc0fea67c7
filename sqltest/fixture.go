package sqltest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	"github.com/sirupsen/logrus"
	"github.com/vippsas/sqlbatch"
	"github.com/vippsas/sqlbatch/sqlcmd"
)

type StdoutLogger struct {
}

func (s StdoutLogger) Printf(format string, v ...interface{}) {
	fmt.Printf(format, v...)
}

func (s StdoutLogger) Println(v ...interface{}) {
	fmt.Println(v...)
}

var _ mssql.Logger = StdoutLogger{}

// Fixture is a freshly created SQL Server database, dropped again by
// Teardown.
type Fixture struct {
	DB      *sql.DB
	DBName  string
	adminDB *sql.DB
}

// NewFixture creates a database on the server given by SQLSERVER_DSN. The
// test is skipped when SQLSERVER_DSN is not set.
func NewFixture(t testing.TB) *Fixture {
	var fixture Fixture

	dsn := os.Getenv("SQLSERVER_DSN")
	if dsn == "" {
		t.Skip("Must set SQLSERVER_DSN to run tests against SQL Server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if os.Getenv("SQLSERVER_LOG") != "" {
		dsn = dsn + "&log=3"
		mssql.SetLogger(StdoutLogger{})
	}

	var err error

	fixture.adminDB, err = sql.Open("sqlserver", dsn)
	if err != nil {
		panic(err)
	}
	fixture.DBName = strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")

	_, err = fixture.adminDB.ExecContext(ctx, fmt.Sprintf(`create database [%s]`, fixture.DBName))
	if err != nil {
		panic(err)
	}

	pdsn, err := msdsn.Parse(dsn)
	if err != nil {
		panic(err)
	}
	pdsn.Database = fixture.DBName

	fixture.DB, err = sql.Open("sqlserver", pdsn.URL().String())
	if err != nil {
		panic(err)
	}

	return &fixture
}

func (f *Fixture) Teardown() {
	if f.adminDB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	_ = f.DB.Close()
	f.DB = nil
	_, _ = f.adminDB.ExecContext(ctx, fmt.Sprintf(`alter database [%s] set single_user with rollback immediate`, f.DBName))
	_, _ = f.adminDB.ExecContext(ctx, fmt.Sprintf(`drop database [%s]`, f.DBName))
	_ = f.adminDB.Close()
	f.adminDB = nil
}

// RunScript runs one of the embedded test scripts; its :r includes are
// also read from the embedded files.
func (f *Fixture) RunScript(ctx context.Context, filename string, opts sqlbatch.Options) error {
	files := sqlcmd.FSFiles{FS: Scripts}
	text, err := files.ReadFile(filename)
	if err != nil {
		return err
	}
	opts.Files = files
	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		opts.Logger = logger
	}
	return sqlbatch.Run(ctx, f.DB, sqlbatch.Script{Name: filename, Text: text}, opts)
}
