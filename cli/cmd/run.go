package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vippsas/sqlbatch"
)

var (
	noWrap bool

	runCmd = &cobra.Command{
		Use:   "run <dbname> <script.sql>",
		Short: "Runs a script on a database configured in sqlbatch.yaml",
		Long: "Runs a script on a database configured in sqlbatch.yaml. On SQL Server the batches are " +
			"wrapped in a superbatch that prints the failing batch; use --no-wrap to run them one by one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			ctx := context.Background()

			if len(args) != 2 {
				_ = cmd.Help()
				return errors.New("Wrong number of arguments")
			}
			dbname := args[0]

			config, err := LoadConfig()
			if err != nil {
				return err
			}
			dbconfig, ok := config.Databases[dbname]
			if !ok {
				return fmt.Errorf("database %s not present in configuration file", dbname)
			}

			script, err := readScript(args[1])
			if err != nil {
				return err
			}
			vars, err := scriptVariables()
			if err != nil {
				return err
			}

			dbc, err := dbconfig.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = dbc.Close()
			}()

			err = sqlbatch.Run(ctx, dbc, script, sqlbatch.Options{
				Variables: vars,
				Wrap:      !noWrap && !isPostgres(dbconfig),
				Logger:    logger,
			})
			if err != nil {
				return printError(err)
			}
			fmt.Printf("Script %s successfully run on %s\n", script.Name, dbname)
			return nil
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&noWrap, "no-wrap", false, "run batches one by one instead of as one superbatch")
	rootCmd.AddCommand(runCmd)
}
