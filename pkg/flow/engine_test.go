package flow_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{ID: fmt.Sprintf("%d", i+1), Text: fmt.Sprintf("Q%d", i+1), Kind: domain.KindText}
	}
	return qs
}

func TestEngine_Scenario_TwoQuestions(t *testing.T) {
	eng := flow.New(questions(2))
	assert.Equal(t, domain.StatusIdle, eng.State())
	_, ok := eng.CurrentQuestion()
	assert.False(t, ok)

	require.NoError(t, eng.Start())
	assert.Equal(t, domain.StatusAnswering, eng.State())
	text, ok := eng.CurrentQuestion()
	assert.True(t, ok)
	assert.Equal(t, "Q1", text)

	require.NoError(t, eng.Answer())
	assert.Equal(t, domain.StatusAnswering, eng.State())
	text, _ = eng.CurrentQuestion()
	assert.Equal(t, "Q2", text)

	require.NoError(t, eng.Answer())
	assert.Equal(t, domain.StatusCompleted, eng.State())
	_, ok = eng.CurrentQuestion()
	assert.False(t, ok)
}

func TestEngine_Totality(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for _, ev := range []domain.Event{domain.EventAnswer, domain.EventSkip} {
			t.Run(fmt.Sprintf("%d_%s", n, ev), func(t *testing.T) {
				eng := flow.New(questions(n))
				require.NoError(t, eng.Start())

				for i := 0; i < n-1; i++ {
					require.NoError(t, eng.Send(ev))
					assert.Equal(t, domain.StatusAnswering, eng.State(), "event %d must not complete", i+1)
				}
				require.NoError(t, eng.Send(ev))
				assert.Equal(t, domain.StatusCompleted, eng.State(), "the n-th event completes")
			})
		}
	}
}

func TestEngine_Monotonicity(t *testing.T) {
	eng := flow.New(questions(5))
	require.NoError(t, eng.Start())

	last := eng.Index()
	assert.Equal(t, 0, last)
	for i := 0; eng.State() == domain.StatusAnswering; i++ {
		if i%2 == 0 {
			require.NoError(t, eng.Answer())
		} else {
			require.NoError(t, eng.Skip())
		}
		if eng.State() != domain.StatusAnswering {
			break
		}
		assert.Equal(t, last+1, eng.Index(), "index advances by exactly one")
		last = eng.Index()
	}
	assert.Equal(t, 4, last)
}

func TestEngine_TerminalIsIdempotent(t *testing.T) {
	eng := flow.New(questions(1))
	require.NoError(t, eng.Start())
	require.NoError(t, eng.Skip())
	require.Equal(t, domain.StatusCompleted, eng.State())

	for _, ev := range []domain.Event{domain.EventAnswer, domain.EventSkip, domain.EventStart} {
		err := eng.Send(ev)
		assert.ErrorIs(t, err, domain.ErrInvalidEvent)
		assert.Equal(t, domain.StatusCompleted, eng.State())
		_, ok := eng.CurrentQuestion()
		assert.False(t, ok)
	}
}

func TestEngine_InvalidEventsAreNoOps(t *testing.T) {
	eng := flow.New(questions(3))

	assert.ErrorIs(t, eng.Answer(), domain.ErrInvalidEvent)
	assert.ErrorIs(t, eng.Skip(), domain.ErrInvalidEvent)
	assert.Equal(t, domain.StatusIdle, eng.State())

	require.NoError(t, eng.Start())
	assert.ErrorIs(t, eng.Start(), domain.ErrInvalidEvent, "START while answering is ignored")
	assert.Equal(t, 0, eng.Index())

	assert.ErrorIs(t, eng.Send("REWIND"), domain.ErrInvalidEvent)
	assert.Equal(t, 0, eng.Index())
}

func TestEngine_EmptyStartIsRejected(t *testing.T) {
	eng := flow.New(nil)
	err := eng.Start()
	assert.ErrorIs(t, err, domain.ErrEmptyFlow)
	assert.Equal(t, domain.StatusIdle, eng.State())
	assert.Equal(t, -1, eng.Index())
}

func TestEngine_QuestionsAreCopied(t *testing.T) {
	qs := questions(2)
	eng := flow.New(qs)
	qs[0].Text = "changed"

	require.NoError(t, eng.Start())
	text, _ := eng.CurrentQuestion()
	assert.Equal(t, "Q1", text)
}

func TestEngine_Snapshot(t *testing.T) {
	eng := flow.New(questions(2))
	snap := eng.Snapshot()
	assert.Equal(t, flow.Snapshot{Status: domain.StatusIdle, Index: -1, Total: 2}, snap)

	require.NoError(t, eng.Start())
	snap = eng.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, "Q1", snap.Current.Text)
	assert.Equal(t, 0, snap.Index)
}

func TestRestore(t *testing.T) {
	eng := flow.New(questions(3))
	require.NoError(t, eng.Start())
	require.NoError(t, eng.Answer())

	restored, err := flow.Restore(eng.Record())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnswering, restored.State())
	text, _ := restored.CurrentQuestion()
	assert.Equal(t, "Q2", text)

	require.NoError(t, restored.Answer())
	require.NoError(t, restored.Answer())
	assert.Equal(t, domain.StatusCompleted, restored.State())

	_, err = flow.Restore(domain.FlowRecord{Status: domain.StatusAnswering, Index: 3, Questions: questions(3)})
	assert.Error(t, err)

	_, err = flow.Restore(domain.FlowRecord{Status: "paused"})
	assert.Error(t, err)
}

func TestEngine_Hooks(t *testing.T) {
	var got []domain.TransitionEvent
	eng := flow.New(questions(2), flow.WithHooks(domain.Hooks{
		OnTransition: func(ev domain.TransitionEvent) { got = append(got, ev) },
	}))

	require.NoError(t, eng.Start())
	require.NoError(t, eng.Skip())
	require.NoError(t, eng.Answer())
	_ = eng.Answer() // ignored, no hook

	require.Len(t, got, 3)
	assert.Equal(t, domain.TransitionEvent{From: domain.StatusIdle, To: domain.StatusAnswering, Event: domain.EventStart, Index: 0}, got[0])
	assert.Equal(t, domain.TransitionEvent{From: domain.StatusAnswering, To: domain.StatusAnswering, Event: domain.EventSkip, Index: 1}, got[1])
	assert.Equal(t, domain.TransitionEvent{From: domain.StatusAnswering, To: domain.StatusCompleted, Event: domain.EventAnswer, Index: -1}, got[2])
}
