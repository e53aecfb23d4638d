package flow

import "github.com/aretw0/questionnaire/pkg/domain"

// guard selects a transition. A nil guard always passes.
type guard func(e *Engine) bool

// action runs when a transition fires, after the state has been updated.
type action func(e *Engine)

type transition struct {
	guard  guard
	target domain.Status
	action action
}

// table is the complete state machine: state x event -> ordered candidate transitions.
var table = map[domain.Status]map[domain.Event][]transition{
	domain.StatusIdle: {
		domain.EventStart: {
			{guard: hasQuestions, target: domain.StatusAnswering, action: enterFirst},
		},
	},
	domain.StatusAnswering: {
		domain.EventAnswer: advance,
		domain.EventSkip:   advance,
	},
	domain.StatusCompleted: {},
}

// advance is shared by ANSWER and SKIP: at the sequencing level they are the same.
var advance = []transition{
	{guard: hasMoreQuestions, target: domain.StatusAnswering, action: next},
	{target: domain.StatusCompleted, action: clearCurrent},
}

func hasQuestions(e *Engine) bool { return len(e.questions) > 0 }

func hasMoreQuestions(e *Engine) bool { return e.index < len(e.questions)-1 }

func enterFirst(e *Engine) { e.index = 0 }

func next(e *Engine) { e.index++ }

func clearCurrent(e *Engine) { e.index = -1 }
