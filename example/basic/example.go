package example

import (
	"embed"

	"github.com/vippsas/sqlbatch/sqlcmd"
	"github.com/vippsas/sqlbatch/superbatch"
)

//go:embed *.sql
//go:embed */*.sql
var sqlfs embed.FS

// Deploy returns the deployment script for the given environment, wrapped
// in a superbatch.
func Deploy(environment string) (string, error) {
	files := sqlcmd.FSFiles{FS: sqlfs}
	text, err := files.ReadFile("deploy.sql")
	if err != nil {
		return "", err
	}

	p := sqlcmd.New()
	p.Files = files
	p.Variables.Define("Environment", environment)
	return superbatch.Compose(p.Process("deploy.sql", text).All())
}
