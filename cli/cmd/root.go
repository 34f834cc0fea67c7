package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "sqlbatch",
		Short:        "sqlbatch",
		SilenceUsage: true,
		Long:         `CLI tool for preprocessing sqlcmd-style scripts ($(var), :setvar, :r, GO) into batches, and running them on Microsoft SQL or PostgreSQL.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	directory   string
	assignments []string
	verbose     bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", ".", "path to directory containing sqlbatch.yaml")
	rootCmd.PersistentFlags().StringArrayVarP(&assignments, "var", "v", nil, "define a SqlCmd variable as name=value; overrides sqlbatch.yaml")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log directives and executed batches")
	return rootCmd.Execute()
}
