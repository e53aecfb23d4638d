package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// Node IDs of the synthetic start and end nodes.
const (
	StartNode = "start"
	EndNode   = "done"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor marks the questions a session has passed and the one it is on.
func OverlayFor(rec domain.FlowRecord) *GraphOverlay {
	o := &GraphOverlay{VisitedNodes: []string{StartNode}}
	for i, q := range rec.Questions {
		if i >= rec.Index {
			break
		}
		o.VisitedNodes = append(o.VisitedNodes, q.ID)
	}

	switch {
	case rec.Status == domain.StatusCompleted:
		o.CurrentNode = EndNode
	case rec.Status == domain.StatusIdle:
		o.VisitedNodes = nil
		o.CurrentNode = StartNode
	default:
		if q, ok := rec.Current(); ok {
			o.CurrentNode = q.ID
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the question sequence.
// Shapes:
// - Start/End: ((Circle))
// - Multiple choice: {{Hexagon}} listing the options
// - Text: [/Parallelogram/]
// Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(questions []domain.Question, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"Start\"))\n", StartNode))

	prev := StartNode
	for i, q := range questions {
		safeID := sanitizeMermaidID(q.ID)
		label := fmt.Sprintf("%d. %s", i+1, escapeLabel(q.Text))

		switch q.Kind {
		case domain.KindMultipleChoice:
			opts := make([]string, len(q.Options))
			for j, o := range q.Options {
				opts[j] = escapeLabel(o)
			}
			sb.WriteString(fmt.Sprintf("    %s{{\"%s <br/> %s\"}}\n", safeID, label, strings.Join(opts, " | ")))
		default:
			sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", safeID, label))
		}

		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, safeID))
		prev = safeID
	}

	sb.WriteString(fmt.Sprintf("    %s((\"Done\"))\n", EndNode))
	sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, EndNode))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// sanitizeMermaidID prefixes question IDs so they never collide with the start/end nodes
// or begin with a digit.
func sanitizeMermaidID(id string) string {
	if id == StartNode || id == EndNode {
		return id
	}
	s := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
	if s == "" {
		return ""
	}
	return "q_" + s
}
