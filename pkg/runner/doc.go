/*
Package runner drives a respondent session from a terminal or a pipe.

It is the bridge between the questionnaire Service and the person (or program)
answering. The runner renders the active question through a pluggable IOHandler,
reads a response, sends ANSWER or SKIP and repeats until the flow completes.

# Key Components

  - Runner: the prompt loop. Sessions are persisted after every step by the Service,
    so an interrupted run can be resumed with WithSessionID.
  - TextHandler: interactive CLI usage, optionally rendering markdown.
  - JSONHandler: JSON-Lines frames for scripted clients.
  - InputFilter: rewrites raw input before it is validated (e.g. option numbers).
  - Input is cleaned with domain.CleanAnswer, bounded by the handler's MaxInputSize.

# Usage

	r := runner.NewRunner(
		runner.WithQuestionnaire("default"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	rec, err := r.Run(ctx, svc)
*/
package runner
