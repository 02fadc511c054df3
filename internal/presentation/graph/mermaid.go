package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
)

// Overlay contains editor state to highlight on the chart.
type Overlay struct {
	Selected []string
	// Errors lists items flagged by the topology audit.
	Errors []string
}

// GenerateMermaid produces a Mermaid flowchart of a document.
// Node shapes follow the node role:
// - Start: ((Circle))
// - Transitive: ([Stadium])
// - Default: [Rectangle]
//
// Flow documents render top-down; mind documents render left-to-right with
// one link per parent topic. Edges with a free endpoint have nothing to point
// at and are emitted as comments.
func GenerateMermaid(doc *domain.Document, overlay *Overlay) string {
	var sb strings.Builder
	if doc.Kind == domain.KindMind {
		sb.WriteString("graph LR\n")
	} else {
		sb.WriteString("graph TD\n")
	}

	var hidden []string
	for _, node := range doc.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.Start:
			opener, closer = "((", "))"
		case node.Transitive:
			opener, closer = "([", "])"
		}

		label := node.Label
		if label == "" {
			label = node.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(label), closer)
		if node.Hidden {
			hidden = append(hidden, safeID)
		}
	}

	if doc.Kind == domain.KindMind {
		for _, node := range doc.Nodes {
			if node.Parent != "" {
				fmt.Fprintf(&sb, "    %s --- %s\n", sanitizeMermaidID(node.Parent), sanitizeMermaidID(node.ID))
			}
		}
	}

	for _, edge := range doc.Edges {
		if edge.Draft {
			continue
		}
		if edge.Source.IsFree() || edge.Target.IsFree() {
			fmt.Fprintf(&sb, "    %%%% %s: free endpoint\n", edge.ID)
			continue
		}

		arrow := "-->"
		if edge.Hidden {
			arrow = "-.->"
		}
		if edge.Label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(edge.Label))
			if edge.Hidden {
				arrow = fmt.Sprintf("-. \"%s\" .->", escape(edge.Label))
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(edge.Source.Node), arrow, sanitizeMermaidID(edge.Target.Node))
	}

	if len(hidden) > 0 {
		sb.WriteString("    classDef hidden stroke-dasharray:4 4,opacity:0.5;\n")
		for _, id := range hidden {
			fmt.Fprintf(&sb, "    class %s hidden;\n", id)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000;\n")

		nodes := make(map[string]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			nodes[n.ID] = true
		}
		// Only nodes can carry a class; edge ids are skipped.
		classify := func(ids []string, class string) {
			seen := make(map[string]bool)
			for _, id := range ids {
				if nodes[id] && !seen[id] {
					seen[id] = true
					fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(id), class)
				}
			}
		}
		classify(overlay.Selected, "selected")
		classify(overlay.Errors, "error")
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
