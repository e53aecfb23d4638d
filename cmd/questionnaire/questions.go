package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/questionnaire/internal/cli"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Configure the questions of a questionnaire",
}

var questionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List questions in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		questions, err := app.Service.Questions(cmd.Context(), cfg.Questionnaire)
		if err != nil {
			return fail("Error listing questions", err)
		}
		cli.PrintQuestions(cmd.OutOrStdout(), questions)
		return nil
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add <question>",
	Short: "Append a question",
	Example: `  questionnaire questions add "What is your name?"
  questionnaire questions add "Pick a colour" --type multiple-choice --options red,green,blue`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		options, _ := cmd.Flags().GetString("options")

		draft, err := domain.ParseDraft(args[0], kind, options)
		if err != nil {
			return fail("Invalid question", err)
		}

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		q, err := app.Service.AddQuestion(cmd.Context(), cfg.Questionnaire, draft)
		if err != nil {
			return fail("Error adding question", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added question '%s' (%s)\n", q.ID, q.Text)
		return nil
	},
}

var questionsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the text, type or options of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch domain.Patch
		if cmd.Flags().Changed("text") {
			text, _ := cmd.Flags().GetString("text")
			patch.Text = &text
		}
		if cmd.Flags().Changed("type") {
			raw, _ := cmd.Flags().GetString("type")
			kind, err := domain.ParseKind(raw)
			if err != nil {
				return fail("Invalid type", err)
			}
			patch.Kind = &kind
		}
		if cmd.Flags().Changed("options") {
			raw, _ := cmd.Flags().GetString("options")
			opts, err := domain.ParseOptions(raw)
			if err != nil {
				return fail("Invalid options", err)
			}
			patch.Options = &opts
		}
		if patch.Empty() {
			return fmt.Errorf("nothing to change: use --text, --type or --options")
		}

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Service.EditQuestion(cmd.Context(), cfg.Questionnaire, args[0], patch); err != nil {
			return fail(fmt.Sprintf("Error editing '%s'", args[0]), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated question '%s'\n", args[0])
		return nil
	},
}

var questionsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove one or more questions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		out := cmd.OutOrStdout()

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		failed := 0
		for _, id := range args {
			if !yes {
				ok, err := cli.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete question '%s'?", id))
				if err != nil {
					return fail("Error reading confirmation", err)
				}
				if !ok {
					fmt.Fprintf(out, "Kept question '%s'\n", id)
					continue
				}
			}
			if err := app.Service.DeleteQuestion(cmd.Context(), cfg.Questionnaire, id); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %s\n", id, domain.Message(err))
				failed++
			} else {
				fmt.Fprintf(out, "Removed question '%s'\n", id)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d questions could not be removed", failed, len(args))
		}
		return nil
	},
}

var questionsMvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Move a question to another position (1-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fail("Invalid <from>", err)
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fail("Invalid <to>", err)
		}

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Service.ReorderQuestions(cmd.Context(), cfg.Questionnaire, from-1, to-1); err != nil {
			return fail("Error moving question", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved question %d to position %d\n", from, to)
		return nil
	},
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the question list with a YAML or JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questions, err := cli.ReadQuestions(args[0], uuid.NewString)
		if err != nil {
			return fail(fmt.Sprintf("Error reading %s", args[0]), err)
		}

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Service.ReplaceQuestions(cmd.Context(), cfg.Questionnaire, questions); err != nil {
			return fail("Error importing", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions into '%s'\n", len(questions), cfg.Questionnaire)
		return nil
	},
}

var questionsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the question list as YAML or JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		questions, err := app.Service.Questions(cmd.Context(), cfg.Questionnaire)
		if err != nil {
			return fail("Error loading questions", err)
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			if !cmd.Flags().Changed("format") {
				format = cli.FormatFor(args[0])
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fail("Error creating file", err)
			}
			defer f.Close()
			out = f
		}
		return fail("Error writing questions", cli.WriteQuestions(out, questions, format))
	},
}

var questionsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		app, cfg, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		questions, err := app.Service.Seed(cmd.Context(), cfg.Questionnaire, force)
		if err != nil {
			return fail("Error seeding questions", err)
		}
		cli.PrintQuestions(cmd.OutOrStdout(), questions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.AddCommand(questionsLsCmd, questionsAddCmd, questionsEditCmd, questionsRmCmd,
		questionsMvCmd, questionsImportCmd, questionsExportCmd, questionsSeedCmd)

	questionsAddCmd.Flags().String("type", "text", "Question type: text or multiple-choice")
	questionsAddCmd.Flags().String("options", "", "Comma separated options (multiple-choice)")

	questionsEditCmd.Flags().String("text", "", "New question text")
	questionsEditCmd.Flags().String("type", "", "New type: text or multiple-choice")
	questionsEditCmd.Flags().String("options", "", "New comma separated options")

	questionsRmCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	questionsExportCmd.Flags().String("format", cli.FormatYAML, "Output format: yaml or json")

	questionsSeedCmd.Flags().Bool("force", false, "Replace existing questions")
}
