package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/internal/presentation/tui"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Questionnaire string
	SessionID     string
	Headless      bool
	JSON          bool
	// Rich enables the banner and markdown rendering. Callers set it when Stdout is a TTY.
	Rich bool
}

// RunSession executes one respondent session and prints a summary when it completes.
func RunSession(ctx context.Context, app *App, opts RunOptions, in io.Reader, out io.Writer) error {
	rich := opts.Rich && !opts.JSON && !opts.Headless
	if rich {
		tui.PrintBanner(out)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithHeadless(opts.Headless || opts.JSON),
		runner.WithQuestionnaire(opts.Questionnaire),
		runner.WithSessionID(opts.SessionID),
	}

	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(in, out, runner.WithJSONHandlerMaxInputSize(app.Config.MaxInputSize))))
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithTextHandlerMaxInputSize(app.Config.MaxInputSize)}
		if rich {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewTextHandler(in, out, textOpts...)))
	}

	rec, err := runner.NewRunner(runnerOpts...).Run(ctx, app.Service)
	if err != nil {
		if HandleExecutionError(err) == nil {
			app.Logger.Info("Session interrupted", "session_id", rec.SessionID, "index", rec.Index)
			return nil
		}
		return err
	}

	if rec.Status != domain.StatusCompleted || opts.JSON {
		return nil
	}

	answers, err := app.Service.Answers(ctx, rec.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	summary := FormatSummary(rec, answers)
	if rich {
		if rendered, err := tui.NewRenderer()(summary); err == nil {
			summary = rendered
		}
	}
	fmt.Fprintln(out, summary)
	return nil
}

// FormatSummary renders the answers of a finished session as a markdown table.
func FormatSummary(rec domain.FlowRecord, answers []domain.Answer) string {
	byID := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}

	var b strings.Builder
	b.WriteString("## Your answers\n\n| # | Question | Answer |\n|---|----------|--------|\n")
	for i, q := range rec.Questions {
		value := "_skipped_"
		if a, ok := byID[q.ID]; ok && !a.Skipped {
			value = strings.ReplaceAll(a.Value, "|", "\\|")
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, strings.ReplaceAll(q.Text, "|", "\\|"), value)
	}
	return b.String()
}

// DefaultQuestionnaire falls back to the library default for an empty id.
func DefaultQuestionnaire(id string) string {
	if id == "" {
		return questionnaire.DefaultQuestionnaire
	}
	return id
}
