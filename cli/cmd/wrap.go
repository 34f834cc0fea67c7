package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vippsas/sqlbatch/superbatch"
)

var (
	wrapCmd = &cobra.Command{
		Use:   "wrap <script.sql>",
		Short: "Preprocess a script and dump it as a single error-handling superbatch to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <script.sql>")
			}
			script, err := readScript(args[0])
			if err != nil {
				return err
			}
			p, err := preprocessor()
			if err != nil {
				return err
			}

			wrapped, err := superbatch.Compose(p.Process(script.Name, script.Text).All())
			if err != nil {
				return printError(err)
			}
			fmt.Print(wrapped)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(wrapCmd)
}
