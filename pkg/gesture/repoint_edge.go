package gesture

import (
	"context"

	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/topology"
)

// RepointEdgeName identifies the re-point gesture in hooks and logs.
const RepointEdgeName = "repoint-edge"

// RepointEdge drags the start or end handle of a selected edge onto another
// anchor. While dragging, the edge is replaced by a working copy with the
// same id; on release the original comes back verbatim unless the move is
// valid, in which case a reconnect command records it.
type RepointEdge struct {
	cfg   Config
	table Table

	state    State
	original domain.EdgeModel
	start    bool
	last     PointerEvent
}

// NewRepointEdge creates an idle re-point controller.
func NewRepointEdge(cfg Config) *RepointEdge {
	r := &RepointEdge{cfg: cfg.withDefaults(), state: StateIdle}
	r.table = Table{
		EventEdgeMouseDown:  r.pointerDown,
		EventMouseMove:      r.pointerMove,
		EventMouseUp:        r.pointerUp,
		EventNodeMouseLeave: r.nodeLeave,
		EventCanvasLeave:    r.canvasLeave,
	}
	return r
}

func (r *RepointEdge) Name() string { return RepointEdgeName }

func (r *RepointEdge) State() State { return r.state }

func (r *RepointEdge) Events() Table { return r.table }

// Original returns the committed model of the edge being re-pointed. It
// reports false when no handle is held.
func (r *RepointEdge) Original() (domain.EdgeModel, bool) {
	if r.state == StateIdle {
		return domain.EdgeModel{}, false
	}
	return r.original.Clone(), true
}

// field is the model key of the grabbed endpoint.
func (r *RepointEdge) field() string {
	if r.start {
		return "source"
	}
	return "target"
}

// fixed is the endpoint that stays in place.
func (r *RepointEdge) fixed() domain.Endpoint {
	if r.start {
		return r.original.Target
	}
	return r.original.Source
}

// grabbed is the endpoint being moved, as it was before the gesture.
func (r *RepointEdge) grabbed() domain.Endpoint {
	if r.start {
		return r.original.Source
	}
	return r.original.Target
}

func (r *RepointEdge) direction() domain.Direction {
	if r.start {
		return domain.DirectionOut
	}
	return domain.DirectionIn
}

func (r *RepointEdge) pointerDown(ctx context.Context, c *Context, e PointerEvent) {
	g := c.Graph
	if r.state != StateIdle || readonly(g) || e.ItemType != domain.ItemTypeEdge {
		return
	}
	if e.Target != TargetHandleStart && e.Target != TargetHandleEnd {
		return
	}
	if !g.HasState(e.ItemID, domain.StateSelected) {
		return
	}
	original, ok := g.FindEdge(e.ItemID)
	if !ok || original.Draft {
		return
	}

	r.original = original
	r.start = e.Target == TargetHandleStart

	working := original.Clone()
	working.Draft = true
	if r.start {
		working.Source = domain.AtPoint(e.Point())
	} else {
		working.Target = domain.AtPoint(e.Point())
	}
	if err := g.RemoveItem(original.ID); err != nil {
		c.logger().ErrorContext(ctx, "failed to lift edge", "gesture", RepointEdgeName, "error", err)
		return
	}
	if err := g.AddEdge(working); err != nil {
		c.logger().ErrorContext(ctx, "failed to add working copy", "gesture", RepointEdgeName, "error", err)
		r.restore(ctx, c)
		return
	}
	r.last = e
	r.state = StateHandleGrabbed

	fixed := r.fixed().Node
	for _, n := range g.Nodes() {
		if n.ID != fixed {
			showAnchors(g, n.ID, allEnabled(n.AnchorCount()))
		}
	}
}

// snaps reports whether the working copy may bind to the anchor under e
// while dragging: degree limit for the edited direction, then no self loop.
func (r *RepointEdge) snaps(g ports.Graph, e PointerEvent) bool {
	if !e.onAnchor() {
		return false
	}
	if !topology.CheckOutAndInEdge(g, e.ItemID, r.direction(), r.cfg.LinkRules, r.original.ID) {
		return false
	}
	return topology.NotSelf(r.fixed().Node, e.ItemID)
}

func (r *RepointEdge) pointerMove(ctx context.Context, c *Context, e PointerEvent) {
	if r.state == StateIdle {
		return
	}
	g := c.Graph
	r.state = StateRedirecting
	r.last = e

	end := domain.AtPoint(e.Point())
	if r.snaps(g, e) {
		end = domain.AtNode(e.ItemID, e.Anchor)
	}
	if err := g.UpdateItem(r.original.ID, domain.Patch{r.field(): end}); err != nil {
		c.logger().ErrorContext(ctx, "failed to move working copy", "gesture", RepointEdgeName, "error", err)
	}
}

// nodeLeave re-enables the anchors of a node the pointer passed over.
func (r *RepointEdge) nodeLeave(_ context.Context, c *Context, e PointerEvent) {
	if r.state == StateIdle || e.ItemID == r.fixed().Node {
		return
	}
	if n, ok := c.Graph.FindNode(e.ItemID); ok {
		showAnchors(c.Graph, n.ID, allEnabled(n.AnchorCount()))
	}
}

func (r *RepointEdge) pointerUp(ctx context.Context, c *Context, e PointerEvent) {
	if r.state == StateIdle {
		return
	}
	g := c.Graph
	id := r.original.ID
	if _, ok := g.ItemType(id); ok {
		_ = g.RemoveItem(id)
	}
	hideAllAnchors(g)
	r.state = StateIdle

	if !e.onAnchor() {
		r.rollback(ctx, c, domain.ReasonNotAnchor)
		return
	}
	end := domain.AtNode(e.ItemID, e.Anchor)
	if end.SameBinding(r.grabbed()) {
		r.rollback(ctx, c, domain.ReasonUnchanged)
		return
	}

	candidate := topology.Candidate{EdgeID: id, Check: r.direction()}
	if r.start {
		candidate.Source, candidate.Target = end.Node, r.fixed().Node
	} else {
		candidate.Source, candidate.Target = r.fixed().Node, end.Node
	}
	reason := topology.Validate(g, candidate, r.cfg.rules())
	if reason == "" {
		next := r.original.Clone()
		if r.start {
			next.Source = end
		} else {
			next.Target = end
		}
		if !r.cfg.validate(g, next) {
			reason = domain.ReasonCustomValidation
		}
	}
	if reason != "" {
		r.rollback(ctx, c, reason)
		return
	}

	g.Emit(domain.Event{Type: domain.EventBeforeConnect, ItemID: id, ItemType: domain.ItemTypeEdge})
	err := c.Commands.Execute(ctx, command.Reconnect, map[string]any{
		"model":        r.original,
		"update_model": domain.Patch{r.field(): end},
	})
	if err != nil {
		if reason = domain.ReasonOf(err); reason == "" {
			c.logger().ErrorContext(ctx, "failed to reconnect edge", "gesture", RepointEdgeName, "error", err)
		}
		r.rollback(ctx, c, reason)
		return
	}

	if _, ok := g.FindEdge(id); ok {
		g.SetItemState(id, domain.StateSelected, true)
	}
	g.Emit(domain.Event{Type: domain.EventAfterConnect, ItemID: id, ItemType: domain.ItemTypeEdge})
	c.commit(ctx, RepointEdgeName, id)
}

func (r *RepointEdge) canvasLeave(ctx context.Context, c *Context, _ PointerEvent) {
	if r.state == StateIdle {
		return
	}
	last := r.last
	last.Type = EventMouseUp
	r.pointerUp(ctx, c, last)
}

func (r *RepointEdge) rollback(ctx context.Context, c *Context, reason domain.RejectReason) {
	r.restore(ctx, c)
	c.cancel(ctx, RepointEdgeName, r.original.ID, reason)
}

// restore puts the original edge back verbatim, selected as it was.
func (r *RepointEdge) restore(ctx context.Context, c *Context) {
	g := c.Graph
	if _, ok := g.ItemType(r.original.ID); ok {
		_ = g.RemoveItem(r.original.ID)
	}
	if err := g.AddEdge(r.original); err != nil {
		c.logger().ErrorContext(ctx, "failed to restore edge", "gesture", RepointEdgeName, "error", err)
		return
	}
	g.SetItemState(r.original.ID, domain.StateSelected, true)
}
