package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/questionnaire/pkg/adapters/memory"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewSessionStore())
}

func TestQuestionStore_Contract(t *testing.T) {
	ports.RunQuestionStoreContract(t, memory.NewQuestionStore())
}

func TestAnswerStore_Contract(t *testing.T) {
	ports.RunAnswerStoreContract(t, memory.NewAnswerStore())
}

func TestSessionStore_LoadIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()

	rec := domain.FlowRecord{
		SessionID: "s1",
		Status:    domain.StatusAnswering,
		Questions: []domain.Question{{ID: "q1", Text: "A", Kind: domain.KindText}},
	}
	require.NoError(t, store.Save(ctx, "s1", rec))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	loaded.Questions[0].Text = "mutated"

	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Questions[0].Text)
}
