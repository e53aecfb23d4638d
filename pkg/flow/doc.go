/*
Package flow implements the respondent question flow engine.

The Engine sequences a respondent through a fixed, ordered list of questions:

	idle --START--> answering --ANSWER|SKIP--> answering (more questions)
	                          --ANSWER|SKIP--> completed (last question)

Transitions are rows of a table keyed by state and event; each row has an
optional guard, a target state and an action. The first row whose guard passes
fires. Events without a row are ignored and reported as domain.ErrInvalidEvent.

The engine tracks position only. Recording what the respondent actually said
is the job of an answer store keyed by question ID.
*/
package flow
