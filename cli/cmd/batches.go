package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	batchesCmd = &cobra.Command{
		Use:   "batches <script.sql>",
		Short: "Preprocess a script and dump the resulting batches to stdout",
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

			r := p.Process(script.Name, script.Text)
			for r.Next() {
				fmt.Println(r.Text())
				fmt.Println("===")
			}
			return printError(r.Err())
		},
	}
)

func init() {
	rootCmd.AddCommand(batchesCmd)
}
