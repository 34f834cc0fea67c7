package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vippsas/sqlbatch"
	"github.com/vippsas/sqlbatch/sqlcmd"
	"golang.org/x/net/proxy"
	"gopkg.in/yaml.v3"
)

const configFile = "sqlbatch.yaml"

type DatabaseConfig struct {
	Connection string `yaml:"connection"`
}

func OpenSocks5Sql(dsn string) (*sql.DB, error) {
	var err error
	var connector *mssql.Connector

	if strings.HasPrefix(dsn, "azuresql://") {
		connector, err = azuread.NewConnector(dsn)
		if err != nil {
			return nil, err
		}
	} else if strings.HasPrefix(dsn, "sqlserver://") {
		connector, err = mssql.NewConnector(dsn)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, errors.New("expected URI-style dsn; sqlserver:// for password login or azuresql:// for AD login")
	}

	socksProxyAddress := os.Getenv("SQL_SOCKS")
	if socksProxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", socksProxyAddress, nil, nil)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Could not connect with SOCKS5 to %s", socksProxyAddress))
		}
		connector.Dialer = dialer.(proxy.ContextDialer)
	}

	return sql.OpenDB(connector), nil
}

var postgresSchemes = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

func schemeOf(dsn string) string {
	scheme, _, _ := strings.Cut(dsn, "://")
	return scheme
}

func isPostgres(dbcfg DatabaseConfig) bool {
	_, isPostgres := postgresSchemes[schemeOf(dbcfg.Connection)]
	return isPostgres
}

func (dbcfg DatabaseConfig) Open(ctx context.Context, logger logrus.FieldLogger) (*sql.DB, error) {
	if isPostgres(dbcfg) {
		logger.Debug("opening postgresql connection")
		return sql.Open("pgx", dbcfg.Connection)
	}
	logger.Debug("opening sql server connection")
	return OpenSocks5Sql(dbcfg.Connection)
}

type Config struct {
	Databases map[string]DatabaseConfig `yaml:"databases"`
	Variables map[string]string         `yaml:"variables"`
}

func LoadConfig() (Config, error) {
	var result Config

	configFilename := path.Join(directory, configFile)
	if _, err := os.Stat(configFilename); os.IsNotExist(err) {
		return Config{}, errors.New("No sqlbatch.yaml found in current directory")
	}

	yamlFile, err := os.ReadFile(configFilename)
	if err != nil {
		return Config{}, err
	}
	err = yaml.Unmarshal(yamlFile, &result)
	if err != nil {
		return Config{}, errors.Wrap(err, configFilename)
	}
	return result, nil
}

// scriptVariables returns the variables from sqlbatch.yaml, if present,
// overridden by --var flags.
func scriptVariables() (sqlcmd.Variables, error) {
	vars := make(sqlcmd.Variables)

	if _, err := os.Stat(path.Join(directory, configFile)); err == nil {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		vars.Replace(cfg.Variables)
	}

	flagVars, err := sqlcmd.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	for name, value := range flagVars {
		vars.Define(name, value)
	}
	return vars, nil
}

// readScript reads the script named on the command line; `-` is stdin.
func readScript(filename string) (sqlbatch.Script, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return sqlbatch.Script{}, errors.Wrap(err, "reading stdin")
		}
		text, err := sqlcmd.DecodeText(data)
		return sqlbatch.Script{Name: string(sqlcmd.ScriptName), Text: text}, err
	}
	text, err := sqlcmd.OSFiles{}.ReadFile(filename)
	if err != nil {
		return sqlbatch.Script{}, err
	}
	return sqlbatch.Script{Name: filename, Text: text}, nil
}

// preprocessor returns a Preprocessor set up from configuration and flags.
func preprocessor() (*sqlcmd.Preprocessor, error) {
	vars, err := scriptVariables()
	if err != nil {
		return nil, err
	}
	p := sqlcmd.New()
	p.Variables = vars
	p.Logger = logrus.StandardLogger()
	return p, nil
}

// printError prints preprocessing errors with their position.
func printError(err error) error {
	var perr sqlcmd.Error
	if errors.As(err, &perr) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", perr.Pos, perr.Message)
	}
	return err
}
