/*
Package questionnaire authors question lists and walks respondents through them.

Two finite-state machines own all mutable state:

  - pkg/authoring is the configuration engine. It applies add, edit, delete and
    reorder commands to an ordered list and rejects case-insensitive duplicates.
  - pkg/flow is the flow engine. It sequences one respondent through a list,
    idle to answering to completed, on START, ANSWER and SKIP events.

Neither engine performs I/O. The Service in this package is the host: it loads
a list from a ports.QuestionStore, drives an engine under a per-key lock and
saves the result. Respondent sessions are persisted as domain.FlowRecord values
and answers go to a separate ports.AnswerStore.

# Usage

	svc := questionnaire.New(questionnaire.Stores{
		Questions: file.NewQuestionStore(".questionnaire"),
		Sessions:  file.NewSessionStore(".questionnaire"),
		Answers:   file.NewAnswerStore(".questionnaire"),
	})

	q, err := svc.AddQuestion(ctx, "default", domain.Draft{Text: "What is your favorite color?"})
	if err != nil {
		log.Fatal(domain.Message(err))
	}

	rec, _ := svc.StartSession(ctx, "default")
	rec, _ = svc.Answer(ctx, rec.SessionID, "Blue")
	fmt.Println(rec.Status) // completed

Adapters for HTTP (chi), MCP (mcp-go), Redis and the local filesystem live
under pkg/adapters; cmd/questionnaire wires them into a CLI.
*/
package questionnaire
