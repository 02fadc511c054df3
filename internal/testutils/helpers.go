package testutils

import (
	"strings"
	"testing"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/require"
)

// Node returns a node of the given kind placed on a grid by index.
func Node(id, kind string, index int) domain.NodeModel {
	return domain.NodeModel{
		ID:     id,
		Kind:   kind,
		Label:  strings.ToUpper(id),
		X:      float64(index) * 150,
		Y:      100,
		Width:  80,
		Height: 40,
	}
}

// FlowGraph builds a memory flow graph. Edges are written "src->dst" and are
// bound from anchor 1 (right) of src to anchor 3 (left) of dst; the pair
// string is also the edge id. It fails the test immediately on error.
func FlowGraph(t *testing.T, nodes []domain.NodeModel, edges ...string) *memory.Graph {
	t.Helper()

	g := memory.NewGraph()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n), "Failed to add node %s", n.ID)
	}
	for _, pair := range edges {
		src, dst, ok := strings.Cut(pair, "->")
		require.True(t, ok, "edge %q must be written src->dst", pair)
		require.NoError(t, g.AddEdge(domain.EdgeModel{
			ID:     pair,
			Source: domain.AtNode(src, 1),
			Target: domain.AtNode(dst, 3),
		}), "Failed to add edge %s", pair)
	}
	return g
}

// Select marks the given items as the only selected ones.
func Select(g *memory.Graph, ids ...string) {
	for _, kind := range []domain.ItemType{domain.ItemTypeNode, domain.ItemTypeEdge} {
		for _, id := range g.FindAllByState(kind, domain.StateSelected) {
			g.SetItemState(id, domain.StateSelected, false)
		}
	}
	for _, id := range ids {
		g.SetItemState(id, domain.StateSelected, true)
	}
}
