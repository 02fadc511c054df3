package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/topology"
)

// InspectMarkdown summarizes a document as markdown: one table of nodes with
// their degrees, one of edges and the audit findings.
func InspectMarkdown(doc *domain.Document, violations topology.Violations) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", orDash(doc.ID))
	fmt.Fprintf(&sb, "*%s diagram, %d nodes, %d edges, zoom %.2f*\n\n", doc.Kind, len(doc.Nodes), len(doc.Edges), doc.Viewport.Zoom)

	in := map[string]int{}
	out := map[string]int{}
	for _, e := range doc.Edges {
		out[e.Source.Node]++
		in[e.Target.Node]++
	}

	if len(doc.Nodes) > 0 {
		sb.WriteString("## Nodes\n\n| ID | Kind | Label | In | Out | Flags |\n|---|---|---|---|---|---|\n")
		for _, n := range doc.Nodes {
			var flags []string
			if n.Start {
				flags = append(flags, "start")
			}
			if n.Transitive {
				flags = append(flags, "transitive")
			}
			if n.Hidden {
				flags = append(flags, "hidden")
			}
			if n.Parent != "" {
				flags = append(flags, "parent="+n.Parent)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %d | %d | %s |\n",
				n.ID, orDash(n.Kind), cell(orDash(n.Label)), in[n.ID], out[n.ID], orDash(strings.Join(flags, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(doc.Edges) > 0 {
		sb.WriteString("## Edges\n\n| ID | From | To | Label |\n|---|---|---|---|\n")
		for _, e := range doc.Edges {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", e.ID, endpoint(e.Source), endpoint(e.Target), cell(orDash(e.Label)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Validation\n\n")
	if len(violations) == 0 {
		sb.WriteString("No violations.\n")
		return sb.String()
	}
	sorted := append(topology.Violations(nil), violations...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ItemID < sorted[j].ItemID })
	for _, v := range sorted {
		fmt.Fprintf(&sb, "- **%s** `%s`: %s\n", v.ItemID, v.Reason, v.Detail)
	}
	return sb.String()
}

func endpoint(e domain.Endpoint) string {
	if e.IsFree() {
		return fmt.Sprintf("(%.0f, %.0f)", e.X, e.Y)
	}
	return fmt.Sprintf("%s:%d", e.Node, e.Anchor)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
