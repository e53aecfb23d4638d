package main

import (
	"fmt"

	"github.com/aretw0/questionnaire"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "questionnaire version %s\n", questionnaire.Version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
