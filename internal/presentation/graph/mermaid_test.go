package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/questionnaire/internal/presentation/graph"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "a1b2-c3", Text: `Your "nick" name?`, Kind: domain.KindText},
		{ID: "q2", Text: "Age", Kind: domain.KindMultipleChoice, Options: []string{"young", "old"}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		absent   []string
	}{
		{
			name: "Sequence and Shapes",
			contains: []string{
				"graph TD",
				`start(("Start"))`,
				`q_a1b2_c3[/"1. Your 'nick' name?"/]`,
				`q_q2{{"2. Age <br/> young | old"}}`,
				"start --> q_a1b2_c3",
				"q_a1b2_c3 --> q_q2",
				"q_q2 --> done",
			},
			absent: []string{"classDef"},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{VisitedNodes: []string{"start", "a1b2-c3", "a1b2-c3"}, CurrentNode: "q2"},
			contains: []string{
				"class start visited;",
				"class q_a1b2_c3 visited;",
				"class q_q2 current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(sampleQuestions(), tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, got, unwanted)
			}
		})
	}

	got := graph.GenerateMermaid(sampleQuestions(), &graph.GraphOverlay{VisitedNodes: []string{"start", "a1b2-c3", "a1b2-c3"}})
	assert.Equal(t, 1, strings.Count(got, "class q_a1b2_c3 visited;"), "visited nodes are deduplicated")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	got := graph.GenerateMermaid(nil, nil)
	assert.Contains(t, got, "start --> done")
}

func TestOverlayFor(t *testing.T) {
	qs := sampleQuestions()

	answering := graph.OverlayFor(domain.FlowRecord{Status: domain.StatusAnswering, Index: 1, Questions: qs})
	assert.Equal(t, []string{"start", "a1b2-c3"}, answering.VisitedNodes)
	assert.Equal(t, "q2", answering.CurrentNode)

	done := graph.OverlayFor(domain.FlowRecord{Status: domain.StatusCompleted, Index: 2, Questions: qs})
	assert.Equal(t, []string{"start", "a1b2-c3", "q2"}, done.VisitedNodes)
	assert.Equal(t, graph.EndNode, done.CurrentNode)

	idle := graph.OverlayFor(domain.FlowRecord{Status: domain.StatusIdle, Questions: qs})
	assert.Empty(t, idle.VisitedNodes)
	assert.Equal(t, graph.StartNode, idle.CurrentNode)
}
