package main

import (
	"fmt"

	"github.com/aretw0/questionnaire/internal/cli"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage respondent sessions",
	Long:  `List, inspect, and remove respondent sessions and their answers.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Service.SessionIDs(cmd.Context())
		if err != nil {
			return fail("Error listing sessions", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}

		fmt.Fprintln(out, "Sessions:")
		for _, id := range ids {
			rec, err := app.Service.Session(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(out, "- %s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Fprintf(out, "- %s [%s] %s %d/%d\n", id, rec.QuestionnaireID, rec.Status, rec.Index, len(rec.Questions))
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show the state and answers of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := cli.InspectSession(cmd.Context(), app.Service, args[0])
		if err != nil {
			return fail("Error", err)
		}
		return fail("Error", cli.PrintJSON(cmd.OutOrStdout(), report))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		failed := 0
		for _, sessionID := range args {
			if err := app.Service.DeleteSession(cmd.Context(), sessionID); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %s\n", sessionID, domain.Message(err))
				failed++
			} else {
				fmt.Fprintf(out, "Removed session '%s'\n", sessionID)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d sessions could not be removed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
