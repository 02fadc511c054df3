package gesture_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/easel/internal/testutils"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executor struct {
	m   *command.Manager
	env *command.Env
}

func (x executor) Execute(ctx context.Context, name string, params map[string]any) error {
	return x.m.Execute(ctx, x.env, name, params)
}

// harness wires a memory graph, a command manager and one controller.
type harness struct {
	t       *testing.T
	g       *memory.Graph
	m       *command.Manager
	env     *command.Env
	gc      *gesture.Context
	router  *gesture.Router
	commits []*domain.GestureEvent
	cancels []*domain.GestureEvent
}

func newHarness(t *testing.T, g *memory.Graph, ctrl gesture.Controller) *harness {
	h := &harness{t: t, g: g, m: command.NewManager()}
	command.RegisterDefaults(h.m)
	h.env = &command.Env{Graph: g, Clipboard: &domain.Clipboard{}}
	h.gc = &gesture.Context{
		Graph:    g,
		Commands: executor{m: h.m, env: h.env},
		Hooks: domain.LifecycleHooks{
			OnGestureCommit: func(_ context.Context, e *domain.GestureEvent) { h.commits = append(h.commits, e) },
			OnGestureCancel: func(_ context.Context, e *domain.GestureEvent) { h.cancels = append(h.cancels, e) },
		},
	}
	h.router = gesture.NewRouter(ctrl)
	return h
}

func (h *harness) send(e gesture.PointerEvent) {
	h.router.Handle(context.Background(), h.gc, e)
}

func anchorEvent(typ gesture.EventName, node string, anchor int) gesture.PointerEvent {
	return gesture.PointerEvent{
		Type:     typ,
		X:        1,
		Y:        1,
		ItemID:   node,
		ItemType: domain.ItemTypeNode,
		Target:   gesture.TargetAnchor,
		Anchor:   anchor,
	}
}

func canvasEvent(typ gesture.EventName, x, y float64) gesture.PointerEvent {
	return gesture.PointerEvent{Type: typ, X: x, Y: y}
}

func handleEvent(edge string, target gesture.Target) gesture.PointerEvent {
	return gesture.PointerEvent{Type: gesture.EventEdgeMouseDown, X: 5, Y: 5, ItemID: edge, ItemType: domain.ItemTypeEdge, Target: target}
}

func (h *harness) historyLen() int {
	length, _ := h.m.History()
	return length
}

func (h *harness) lastCancel() domain.RejectReason {
	h.t.Helper()
	require.NotEmpty(h.t, h.cancels)
	return h.cancels[len(h.cancels)-1].Reason
}

func (h *harness) assertNoAnchorStates() {
	h.t.Helper()
	for _, n := range h.g.Nodes() {
		for i := 0; i < n.AnchorCount(); i++ {
			assert.Equal(h.t, domain.AnchorDefault, h.g.AnchorState(n.ID, i), "%s anchor %d", n.ID, i)
		}
		assert.False(h.t, h.g.HasState(n.ID, domain.StateActiveAnchorPoints), n.ID)
	}
}

func threeNodes() []domain.NodeModel {
	return []domain.NodeModel{
		testutils.Node("n1", "X", 0),
		testutils.Node("n2", "Y", 1),
		testutils.Node("n3", "Y", 2),
	}
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
