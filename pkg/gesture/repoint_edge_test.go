package gesture_test

import (
	"testing"

	"github.com/aretw0/easel/internal/testutils"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findEdge(t *testing.T, g *memory.Graph, id string) domain.EdgeModel {
	t.Helper()
	e, ok := g.FindEdge(id)
	require.True(t, ok, "edge %s missing", id)
	return e
}

// assertRestored checks that a cancelled re-point left no trace.
func assertRestored(t *testing.T, h *harness, before domain.EdgeModel) {
	t.Helper()
	if diff := cmp.Diff(before, findEdge(t, h.g, before.ID)); diff != "" {
		t.Errorf("edge not restored (-want +got):\n%s", diff)
	}
	assert.True(t, h.g.HasState(before.ID, domain.StateSelected), "restored edge stays selected")
	assert.Zero(t, h.historyLen())
	h.assertNoAnchorStates()
}

func TestRepointEdge_CommitsReconnect(t *testing.T) {
	g := testutils.FlowGraph(t, threeNodes(), "n1->n2")
	testutils.Select(g, "n1->n2")
	ctrl := gesture.NewRepointEdge(gesture.Config{})
	h := newHarness(t, g, ctrl)

	h.send(handleEvent("n1->n2", gesture.TargetHandleEnd))
	require.Equal(t, gesture.StateHandleGrabbed, ctrl.State())
	working := findEdge(t, h.g, "n1->n2")
	assert.True(t, working.Draft)
	assert.Equal(t, domain.AtPoint(domain.Point{X: 5, Y: 5}), working.Target)
	assert.Equal(t, domain.AnchorEnabled, g.AnchorState("n3", 2))
	assert.Equal(t, domain.AnchorDefault, g.AnchorState("n1", 0), "the fixed node offers no anchors")

	h.send(anchorEvent(gesture.EventMouseMove, "n3", 2))
	assert.Equal(t, gesture.StateRedirecting, ctrl.State())
	assert.Equal(t, domain.AtNode("n3", 2), findEdge(t, h.g, "n1->n2").Target)

	h.send(anchorEvent(gesture.EventMouseUp, "n3", 2))
	assert.Equal(t, gesture.StateIdle, ctrl.State())
	assert.Equal(t, []string{command.Reconnect}, h.m.Entries())

	edge := findEdge(t, h.g, "n1->n2")
	assert.False(t, edge.Draft)
	assert.Equal(t, domain.AtNode("n1", 1), edge.Source)
	assert.Equal(t, domain.AtNode("n3", 2), edge.Target)
	assert.True(t, g.HasState("n1->n2", domain.StateSelected))
	require.Len(t, h.commits, 1)
	assert.Equal(t, gesture.RepointEdgeName, h.commits[0].Gesture)
	h.assertNoAnchorStates()

	require.NoError(t, h.m.Execute(t.Context(), h.env, command.Undo, nil))
	assert.Equal(t, domain.AtNode("n2", 3), findEdge(t, h.g, "n1->n2").Target)
	require.NoError(t, h.m.Execute(t.Context(), h.env, command.Redo, nil))
	assert.Equal(t, domain.AtNode("n3", 2), findEdge(t, h.g, "n1->n2").Target)
}

func TestRepointEdge_MovesStart(t *testing.T) {
	g := testutils.FlowGraph(t, threeNodes(), "n1->n2")
	testutils.Select(g, "n1->n2")
	h := newHarness(t, g, gesture.NewRepointEdge(gesture.Config{}))

	h.send(handleEvent("n1->n2", gesture.TargetHandleStart))
	h.send(anchorEvent(gesture.EventMouseUp, "n3", 0))

	edge := findEdge(t, h.g, "n1->n2")
	assert.Equal(t, domain.AtNode("n3", 0), edge.Source)
	assert.Equal(t, domain.AtNode("n2", 3), edge.Target)
	assert.Equal(t, 1, h.historyLen())
}

func TestRepointEdge_SameAnchorIsNoOp(t *testing.T) {
	g := testutils.FlowGraph(t, threeNodes(), "n1->n2")
	testutils.Select(g, "n1->n2")
	before := findEdge(t, g, "n1->n2")
	h := newHarness(t, g, gesture.NewRepointEdge(gesture.Config{}))

	h.send(handleEvent("n1->n2", gesture.TargetHandleStart))
	h.send(anchorEvent(gesture.EventMouseMove, "n1", 1))
	h.send(anchorEvent(gesture.EventMouseUp, "n1", 1))

	assertRestored(t, h, before)
	assert.Equal(t, domain.ReasonUnchanged, h.lastCancel())
	assert.Empty(t, h.commits)
}

func TestRepointEdge_DegreeLimitRestoresOriginal(t *testing.T) {
	nodes := []domain.NodeModel{
		testutils.Node("x1", "X", 0),
		testutils.Node("a", "Y", 1),
		testutils.Node("b", "Y", 2),
		testutils.Node("c", "Y", 3),
	}
	g := testutils.FlowGraph(t, nodes, "x1->a", "b->c")
	testutils.Select(g, "b->c")
	before := findEdge(t, g, "b->c")
	h := newHarness(t, g, gesture.NewRepointEdge(gesture.Config{
		LinkRules: domain.LinkRules{"X": {Out: 1}},
	}))

	h.send(handleEvent("b->c", gesture.TargetHandleStart))
	h.send(anchorEvent(gesture.EventMouseMove, "x1", 2))
	assert.True(t, findEdge(t, h.g, "b->c").Source.IsFree(), "a full node does not snap")

	h.send(anchorEvent(gesture.EventMouseUp, "x1", 2))
	assert.Equal(t, domain.ReasonDegreeLimitExceeded, h.lastCancel())
	assertRestored(t, h, before)
	assert.Len(t, g.OutEdges("x1"), 1)
}

func TestRepointEdge_RejectedReleases(t *testing.T) {
	transitive := testutils.Node("n1", "X", 0)
	transitive.Transitive = true

	tests := []struct {
		name   string
		nodes  []domain.NodeModel
		edges  []string
		edit   string
		handle gesture.Target
		cfg    gesture.Config
		up     gesture.PointerEvent
		reason domain.RejectReason
	}{
		{
			name:   "Empty Canvas",
			edges:  []string{"n1->n2"},
			edit:   "n1->n2",
			handle: gesture.TargetHandleEnd,
			up:     canvasEvent(gesture.EventMouseUp, 800, 800),
			reason: domain.ReasonNotAnchor,
		},
		{
			name:   "Self Loop",
			edges:  []string{"n1->n2"},
			edit:   "n1->n2",
			handle: gesture.TargetHandleEnd,
			up:     anchorEvent(gesture.EventMouseUp, "n1", 0),
			reason: domain.ReasonSelfLoop,
		},
		{
			name:   "Duplicate",
			edges:  []string{"n1->n2", "n1->n3"},
			edit:   "n1->n3",
			handle: gesture.TargetHandleEnd,
			up:     anchorEvent(gesture.EventMouseUp, "n2", 0),
			reason: domain.ReasonDuplicateEdge,
		},
		{
			name: "Transitive Source",
			nodes: []domain.NodeModel{
				transitive,
				testutils.Node("n2", "Y", 1),
				testutils.Node("n3", "Y", 2),
				testutils.Node("n4", "Y", 3),
			},
			edges:  []string{"n1->n2", "n3->n4"},
			edit:   "n3->n4",
			handle: gesture.TargetHandleStart,
			up:     anchorEvent(gesture.EventMouseUp, "n1", 0),
			reason: domain.ReasonTransitiveLimit,
		},
		{
			name:   "Custom Validation",
			edges:  []string{"n1->n2"},
			edit:   "n1->n2",
			handle: gesture.TargetHandleEnd,
			cfg: gesture.Config{
				Validate: func(_ ports.Graph, e domain.EdgeModel) bool { return e.Target.Node != "n3" },
			},
			up:     anchorEvent(gesture.EventMouseUp, "n3", 3),
			reason: domain.ReasonCustomValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := tt.nodes
			if nodes == nil {
				nodes = threeNodes()
			}
			g := testutils.FlowGraph(t, nodes, tt.edges...)
			testutils.Select(g, tt.edit)
			before := findEdge(t, g, tt.edit)
			h := newHarness(t, g, gesture.NewRepointEdge(tt.cfg))

			h.send(handleEvent(tt.edit, tt.handle))
			h.send(tt.up)

			assert.Equal(t, tt.reason, h.lastCancel())
			assertRestored(t, h, before)
		})
	}
}

func TestRepointEdge_MultiEdgeAllowed(t *testing.T) {
	g := testutils.FlowGraph(t, threeNodes(), "n1->n2", "n1->n3")
	testutils.Select(g, "n1->n3")
	h := newHarness(t, g, gesture.NewRepointEdge(gesture.Config{AllowMultiEdge: true}))

	h.send(handleEvent("n1->n3", gesture.TargetHandleEnd))
	h.send(anchorEvent(gesture.EventMouseUp, "n2", 0))

	assert.Len(t, g.InEdges("n2"), 2)
	assert.Equal(t, 1, h.historyLen())
}

func TestRepointEdge_RequiresSelectedEdgeHandle(t *testing.T) {
	tests := []struct {
		name     string
		selected bool
		target   gesture.Target
		mode     domain.GraphMode
	}{
		{name: "Unselected Edge", target: gesture.TargetHandleEnd},
		{name: "Edge Body", selected: true, target: gesture.TargetBody},
		{name: "Read Only", selected: true, target: gesture.TargetHandleEnd, mode: domain.ModeReadonly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutils.FlowGraph(t, threeNodes(), "n1->n2")
			if tt.selected {
				testutils.Select(g, "n1->n2")
			}
			if tt.mode != "" {
				g.SetMode(tt.mode)
			}
			ctrl := gesture.NewRepointEdge(gesture.Config{})
			h := newHarness(t, g, ctrl)

			h.send(handleEvent("n1->n2", tt.target))
			h.send(anchorEvent(gesture.EventMouseUp, "n3", 0))

			assert.Equal(t, gesture.StateIdle, ctrl.State())
			assert.False(t, findEdge(t, h.g, "n1->n2").Draft)
			assert.Equal(t, domain.AtNode("n2", 3), findEdge(t, h.g, "n1->n2").Target)
			assert.Empty(t, h.cancels)
			assert.Zero(t, h.historyLen())
		})
	}
}

func TestRepointEdge_CanvasLeaveRollsBack(t *testing.T) {
	g := testutils.FlowGraph(t, threeNodes(), "n1->n2")
	testutils.Select(g, "n1->n2")
	before := findEdge(t, g, "n1->n2")
	ctrl := gesture.NewRepointEdge(gesture.Config{})
	h := newHarness(t, g, ctrl)

	h.send(handleEvent("n1->n2", gesture.TargetHandleEnd))
	h.send(canvasEvent(gesture.EventMouseMove, 640, 480))
	assert.Equal(t, domain.AtPoint(domain.Point{X: 640, Y: 480}), findEdge(t, h.g, "n1->n2").Target)
	h.send(canvasEvent(gesture.EventCanvasLeave, 0, 0))

	assert.Equal(t, gesture.StateIdle, ctrl.State())
	assert.Equal(t, domain.ReasonNotAnchor, h.lastCancel())
	assertRestored(t, h, before)
}
