package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/questionnaire/internal/cli"
	"github.com/aretw0/questionnaire/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the questionnaire interactively",
	Long: `Walks through the questions one at a time.
Type an answer (or an option number), ':skip' or an empty line to skip, ':quit' to leave.
Progress is saved after every answer; resume with --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := cli.RunOptions{
			Questionnaire: cfg.Questionnaire,
			SessionID:     sessionID,
			Headless:      headless,
			JSON:          jsonMode,
			Rich:          tui.IsTerminal(os.Stdout),
		}
		return fail("Error", cli.RunSession(ctx, app, opts, cmd.InOrStdin(), cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no resume hints)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().String("session", "", "Resume an existing session")
}
