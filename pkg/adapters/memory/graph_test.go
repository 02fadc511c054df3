package memory_test

import (
	"testing"

	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlow(t *testing.T) *memory.Graph {
	t.Helper()
	g := memory.NewGraph()
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "a", X: 0, Y: 0, Width: 40, Height: 20}))
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "b", X: 200, Y: 100, Width: 40, Height: 20}))
	require.NoError(t, g.AddEdge(domain.EdgeModel{ID: "e1", Source: domain.AtNode("a", 1), Target: domain.AtNode("b", 3)}))
	return g
}

func TestGraph_AddRejectsInvalidItems(t *testing.T) {
	g := newFlow(t)

	assert.ErrorIs(t, g.AddNode(domain.NodeModel{}), domain.ErrMissingID)
	assert.ErrorIs(t, g.AddNode(domain.NodeModel{ID: "a"}), domain.ErrDuplicateID)
	assert.ErrorIs(t, g.AddEdge(domain.EdgeModel{ID: "a"}), domain.ErrDuplicateID)
	assert.ErrorIs(t,
		g.AddEdge(domain.EdgeModel{ID: "e2", Source: domain.AtNode("a", 0), Target: domain.AtNode("ghost", 0)}),
		domain.ErrInvalidEndpoint)

	// Free endpoints are allowed.
	require.NoError(t, g.AddEdge(domain.EdgeModel{ID: "draft", Source: domain.AtNode("a", 0), Target: domain.AtPoint(domain.Point{X: 5, Y: 5})}))
}

func TestGraph_RemoveNodeTakesIncidentEdges(t *testing.T) {
	g := newFlow(t)

	var removed []string
	g.On(domain.EventAfterRemoveItem, func(e domain.Event) { removed = append(removed, e.ItemID) })

	require.NoError(t, g.RemoveItem("a"))

	_, ok := g.FindEdge("e1")
	assert.False(t, ok)
	assert.Equal(t, []string{"e1", "a"}, removed)
	assert.ErrorIs(t, g.RemoveItem("a"), domain.ErrItemNotFound)
}

func TestGraph_MindRemoveTakesDescendants(t *testing.T) {
	g := memory.NewGraph(memory.WithKind(domain.KindMind))
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "root"}))
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "child", Parent: "root"}))
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "leaf", Parent: "child"}))
	assert.ErrorIs(t, g.AddNode(domain.NodeModel{ID: "orphan", Parent: "ghost"}), domain.ErrItemNotFound)

	require.NoError(t, g.RemoveItem("child"))
	assert.Len(t, g.Nodes(), 1)
}

func TestGraph_UpdateItem(t *testing.T) {
	g := newFlow(t)

	require.NoError(t, g.UpdateItem("a", domain.Patch{"label": "Alpha", "id": "hijack"}))
	n, ok := g.FindNode("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", n.Label)

	require.NoError(t, g.UpdateItem("e1", domain.Patch{"target": domain.AtNode("a", 0)}))
	e, _ := g.FindEdge("e1")
	assert.Equal(t, domain.AtNode("a", 0), e.Target)

	assert.ErrorIs(t, g.UpdateItem("e1", domain.Patch{"target": domain.AtNode("ghost", 0)}), domain.ErrInvalidEndpoint)
	assert.ErrorIs(t, g.UpdateItem("ghost", domain.Patch{}), domain.ErrItemNotFound)
}

func TestGraph_ModelsAreCopies(t *testing.T) {
	g := newFlow(t)
	n, _ := g.FindNode("a")
	n.Label = "changed outside"

	again, _ := g.FindNode("a")
	assert.Empty(t, again.Label)
}

func TestGraph_DegreeQueries(t *testing.T) {
	g := newFlow(t)
	assert.Len(t, g.OutEdges("a"), 1)
	assert.Len(t, g.InEdges("a"), 0)
	assert.Len(t, g.InEdges("b"), 1)
}

func TestGraph_StatesAndOrder(t *testing.T) {
	g := newFlow(t)

	g.SetItemState("a", domain.StateSelected, true)
	g.SetItemState("e1", domain.StateSelected, true)
	g.SetItemState("ghost", domain.StateSelected, true)

	assert.Equal(t, []string{"a"}, g.FindAllByState(domain.ItemTypeNode, domain.StateSelected))
	assert.Equal(t, []string{"e1"}, g.FindAllByState(domain.ItemTypeEdge, domain.StateSelected))

	g.ClearItemStates("a")
	assert.False(t, g.HasState("a", domain.StateSelected))

	g.ToBack("e1")
	assert.Equal(t, "e1", g.Edges()[0].ID)
	g.ToFront("a")
	nodes := g.Nodes()
	assert.Equal(t, "a", nodes[len(nodes)-1].ID)
}

func TestGraph_AutoPaint(t *testing.T) {
	g := newFlow(t)
	before := g.Paints()

	g.SetAutoPaint(false)
	require.NoError(t, g.UpdateItem("a", domain.Patch{"x": 1}))
	require.NoError(t, g.UpdateItem("b", domain.Patch{"x": 2}))
	assert.Equal(t, before, g.Paints())

	g.Paint()
	assert.Equal(t, before+1, g.Paints())
}

func TestGraph_Viewport(t *testing.T) {
	g := memory.NewGraph(memory.WithSize(800, 600), memory.WithZoomLimits(0.5, 2))

	g.ZoomTo(4, domain.Point{X: 400, Y: 300})
	assert.Equal(t, 2.0, g.Zoom(), "zoom is clamped to the maximum")
	assert.Equal(t, domain.Viewport{Zoom: 2, X: -400, Y: -300}, g.View())

	g.SetView(domain.Viewport{Zoom: 1})
	require.NoError(t, g.AddNode(domain.NodeModel{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}))
	g.FitView(0)
	assert.Equal(t, 2.0, g.Zoom())
	assert.Equal(t, domain.Viewport{Zoom: 2, X: 400, Y: 300}, g.View())
}

func TestGraph_Unsubscribe(t *testing.T) {
	g := memory.NewGraph()
	calls := 0
	off := g.On(domain.EventModeChange, func(domain.Event) { calls++ })

	g.SetMode(domain.ModeReadonly)
	off()
	g.SetMode(domain.ModeDefault)

	assert.Equal(t, 1, calls)
}

func TestGraph_Anchors(t *testing.T) {
	g := newFlow(t)
	assert.Equal(t, domain.DefaultAnchorCount, g.AnchorCount("a"))
	assert.Equal(t, 0, g.AnchorCount("ghost"))

	g.SetAnchorStates("a", []domain.AnchorPointState{domain.AnchorEnabled, domain.AnchorDisabled})
	assert.Equal(t, domain.AnchorEnabled, g.AnchorState("a", 0))
	assert.Equal(t, domain.AnchorDisabled, g.AnchorState("a", 1))
	assert.Equal(t, domain.AnchorDefault, g.AnchorState("a", 7))

	g.SetAnchorStates("a", nil)
	assert.Equal(t, domain.AnchorDefault, g.AnchorState("a", 0))
}
