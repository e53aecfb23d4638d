package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "What is your favorite color?", Kind: domain.KindText},
		{ID: "q2", Text: "Select your age range", Kind: domain.KindMultipleChoice, Options: []string{"Under18", "18-25", "26-35"}},
		{ID: "q3", Text: "What is your favorite hobby?", Kind: domain.KindText},
	}
}

// RunQuestionStoreContract verifies that a QuestionStore implementation
// adheres to the defined interface contract.
func RunQuestionStoreContract(t *testing.T, store QuestionStore) {
	ctx := context.Background()
	id := "contract-questionnaire-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		questions := sampleQuestions()
		require.NoError(t, store.Save(ctx, id, questions))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, []string{"q1", "q2", "q3"}, []string{loaded[0].ID, loaded[1].ID, loaded[2].ID}, "order is preserved")
		assert.Equal(t, questions[1].Options, loaded[1].Options)
		assert.Equal(t, domain.KindMultipleChoice, loaded[1].Kind)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		questions := sampleQuestions()
		reordered := []domain.Question{questions[2], questions[0]}
		require.NoError(t, store.Save(ctx, id, reordered))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, "q3", loaded[0].ID)
	})

	t.Run("Save Empty List", func(t *testing.T) {
		emptyID := id + "-empty"
		require.NoError(t, store.Save(ctx, emptyID, nil))
		defer func() { _ = store.Delete(ctx, emptyID) }()

		loaded, err := store.Load(ctx, emptyID)
		require.NoError(t, err, "an empty questionnaire exists")
		assert.Empty(t, loaded)
	})

	t.Run("Saved Data Is Isolated", func(t *testing.T) {
		questions := sampleQuestions()
		require.NoError(t, store.Save(ctx, id, questions))
		questions[0].Text = "mutated"

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "What is your favorite color?", loaded[0].Text)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrQuestionnaireNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := id + "-other"
		require.NoError(t, store.Save(ctx, other, sampleQuestions()))
		defer func() { _ = store.Delete(ctx, other) }()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id)
		assert.Contains(t, ids, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrQuestionnaireNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})
}

// RunSessionStoreContract verifies that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	now := time.Now().UTC().Truncate(time.Second)

	record := func(id string) domain.FlowRecord {
		return domain.FlowRecord{
			SessionID:       id,
			QuestionnaireID: "default",
			Status:          domain.StatusAnswering,
			Index:           1,
			Questions:       sampleQuestions(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, record(sessionID)))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAnswering, loaded.Status)
		assert.Equal(t, 1, loaded.Index)
		assert.Equal(t, "default", loaded.QuestionnaireID)
		assert.True(t, now.Equal(loaded.CreatedAt))
		require.Len(t, loaded.Questions, 3)

		q, ok := loaded.Current()
		assert.True(t, ok)
		assert.Equal(t, "q2", q.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, record(id1)))
		require.NoError(t, store.Save(ctx, id2, record(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID))
		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})
}

// RunAnswerStoreContract verifies that an AnswerStore implementation
// adheres to the defined interface contract.
func RunAnswerStoreContract(t *testing.T, store AnswerStore) {
	ctx := context.Background()
	sessionID := "contract-answers-" + time.Now().Format("20060102150405")
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Empty Session", func(t *testing.T) {
		answers, err := store.Answers(ctx, "nobody-"+sessionID)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})

	t.Run("Record In Order", func(t *testing.T) {
		require.NoError(t, store.Record(ctx, sessionID, domain.Answer{QuestionID: "q1", Value: "Blue", AnsweredAt: now}))
		require.NoError(t, store.Record(ctx, sessionID, domain.Answer{QuestionID: "q2", Skipped: true, AnsweredAt: now}))

		answers, err := store.Answers(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, "q1", answers[0].QuestionID)
		assert.Equal(t, "Blue", answers[0].Value)
		assert.True(t, answers[1].Skipped)
	})

	t.Run("Later Answer Supersedes", func(t *testing.T) {
		require.NoError(t, store.Record(ctx, sessionID, domain.Answer{QuestionID: "q1", Value: "Green", AnsweredAt: now}))

		answers, err := store.Answers(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, answers, 2)
		assert.Equal(t, "q1", answers[0].QuestionID, "position of first recording is kept")
		assert.Equal(t, "Green", answers[0].Value)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, sessionID))
		answers, err := store.Answers(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})
}
