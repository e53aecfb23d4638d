package main

import (
	"fmt"

	"github.com/aretw0/questionnaire/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the question flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the question sequence.
With --session the questions the session has passed and the current one are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if sessionID != "" {
			rec, err := app.Service.Session(cmd.Context(), sessionID)
			if err != nil {
				return fail("Error loading session", err)
			}
			// Sessions keep their own copy of the questions.
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rec.Questions, graph.OverlayFor(rec)))
			return nil
		}

		questions, err := app.Service.Questions(cmd.Context(), cfg.Questionnaire)
		if err != nil {
			return fail("Error loading questions", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(questions, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Overlay the progress of a session")
}
