package main

import (
	"fmt"

	"github.com/aretw0/questionnaire/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a question document",
	Long:  `Parses a YAML or JSON question document and reports invalid questions, options and duplicates.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		questions, err := cli.ReadQuestions(args[0], func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		})
		if err != nil {
			return fail("Validation failed", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d questions are valid! ✅\n", len(questions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
