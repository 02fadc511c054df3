package gesture

import (
	"context"

	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/topology"
)

// AddEdgeName identifies the add-edge gesture in hooks and logs.
const AddEdgeName = "add-edge"

// DraftLabel is the label a new edge starts with.
const DraftLabel = "label"

// AddEdge drags a new edge out of an enabled anchor. On release over an
// enabled anchor of another node, and when the connection rules agree, the
// draft is replaced by an add command so the edge enters history.
type AddEdge struct {
	cfg   Config
	table Table

	state  State
	draft  string
	source domain.Endpoint
	active domain.Endpoint
	last   PointerEvent
}

// NewAddEdge creates an idle add-edge controller.
func NewAddEdge(cfg Config) *AddEdge {
	a := &AddEdge{cfg: cfg.withDefaults(), state: StateIdle}
	a.table = Table{
		EventNodeMouseEnter: a.nodeEnter,
		EventNodeMouseLeave: a.nodeLeave,
		EventNodeMouseDown:  a.pointerDown,
		EventMouseMove:      a.pointerMove,
		EventMouseUp:        a.pointerUp,
		EventCanvasLeave:    a.canvasLeave,
	}
	return a
}

func (a *AddEdge) Name() string { return AddEdgeName }

func (a *AddEdge) State() State { return a.state }

func (a *AddEdge) Events() Table { return a.table }

// Draft returns the id of the draft edge, or "" when idle.
func (a *AddEdge) Draft() string { return a.draft }

func (a *AddEdge) nodeEnter(_ context.Context, c *Context, e PointerEvent) {
	g := c.Graph
	if a.state != StateIdle || readonly(g) {
		return
	}
	node, ok := g.FindNode(e.ItemID)
	if !ok {
		return
	}
	states := make([]domain.AnchorPointState, node.AnchorCount())
	for i := range states {
		states[i] = a.cfg.SourceAnchorState(g, node, i)
	}
	showAnchors(g, node.ID, states)
}

func (a *AddEdge) nodeLeave(_ context.Context, c *Context, e PointerEvent) {
	if a.state != StateIdle {
		return
	}
	if _, ok := c.Graph.FindNode(e.ItemID); ok {
		hideAnchors(c.Graph, e.ItemID)
	}
}

// sourceState returns the computed state of the anchor under e, consulting
// the predicate when the node was never entered.
func (a *AddEdge) sourceState(g ports.Graph, node domain.NodeModel, anchor int) domain.AnchorPointState {
	if s := g.AnchorState(node.ID, anchor); s != domain.AnchorDefault {
		return s
	}
	return a.cfg.SourceAnchorState(g, node, anchor)
}

func (a *AddEdge) pointerDown(ctx context.Context, c *Context, e PointerEvent) {
	g := c.Graph
	if a.state != StateIdle || readonly(g) || !e.onAnchor() {
		return
	}
	node, ok := g.FindNode(e.ItemID)
	if !ok || e.Anchor < 0 || e.Anchor >= node.AnchorCount() {
		return
	}
	if a.sourceState(g, node, e.Anchor) != domain.AnchorEnabled {
		return
	}

	a.source = domain.AtNode(node.ID, e.Anchor)
	draft := domain.EdgeModel{
		ID:     a.cfg.NewID(),
		Kind:   a.cfg.EdgeKind,
		Label:  DraftLabel,
		Source: a.source,
		Target: domain.AtPoint(e.Point()),
		Draft:  true,
	}
	if err := g.AddEdge(draft); err != nil {
		c.logger().ErrorContext(ctx, "failed to add draft edge", "gesture", AddEdgeName, "error", err)
		return
	}
	a.draft = draft.ID
	a.active = domain.Endpoint{}
	a.last = e
	a.state = StateSourceArmed

	for _, target := range g.Nodes() {
		if target.ID == node.ID {
			continue
		}
		states := make([]domain.AnchorPointState, target.AnchorCount())
		for i := range states {
			states[i] = a.cfg.TargetAnchorState(g, a.source, target, i)
		}
		showAnchors(g, target.ID, states)
	}
	setAnchor(g, node.ID, e.Anchor, domain.AnchorActive)
}

// candidate returns the anchor under e when it can take the draft's target.
func (a *AddEdge) candidate(g ports.Graph, e PointerEvent) (domain.Endpoint, bool) {
	if !e.onAnchor() || e.ItemID == a.source.Node {
		return domain.Endpoint{}, false
	}
	if !usable(g.AnchorState(e.ItemID, e.Anchor)) {
		return domain.Endpoint{}, false
	}
	return domain.AtNode(e.ItemID, e.Anchor), true
}

func (a *AddEdge) pointerMove(ctx context.Context, c *Context, e PointerEvent) {
	if a.state == StateIdle {
		return
	}
	g := c.Graph
	a.state = StateDragging
	a.last = e

	target, over := a.candidate(g, e)
	if !target.SameBinding(a.active) {
		if !a.active.IsFree() {
			setAnchor(g, a.active.Node, a.active.Anchor, domain.AnchorEnabled)
		}
		a.active = domain.Endpoint{}
		if over {
			setAnchor(g, target.Node, target.Anchor, domain.AnchorActive)
			a.active = target
		}
	}
	if !over {
		target = domain.AtPoint(e.Point())
	}
	if err := g.UpdateItem(a.draft, domain.Patch{"target": target}); err != nil {
		c.logger().ErrorContext(ctx, "failed to move draft edge", "gesture", AddEdgeName, "error", err)
	}
}

func (a *AddEdge) pointerUp(ctx context.Context, c *Context, e PointerEvent) {
	if a.state == StateIdle {
		return
	}
	g := c.Graph
	model, _ := g.FindEdge(a.draft)
	target, over := a.candidate(g, e)

	if _, ok := g.ItemType(a.draft); ok {
		_ = g.RemoveItem(a.draft)
	}
	hideAllAnchors(g)
	a.state = StateIdle
	a.draft = ""
	a.active = domain.Endpoint{}

	if !over {
		c.cancel(ctx, AddEdgeName, model.ID, domain.ReasonNotAnchor)
		return
	}

	model.Target = target
	model.Draft = false
	reason := topology.Validate(g, topology.Candidate{
		EdgeID: model.ID,
		Source: model.Source.Node,
		Target: target.Node,
		Check:  domain.DirectionAny,
	}, a.cfg.rules())
	if reason == "" && !a.cfg.validate(g, model) {
		reason = domain.ReasonCustomValidation
	}
	if reason != "" {
		c.cancel(ctx, AddEdgeName, model.ID, reason)
		return
	}

	g.Emit(domain.Event{Type: domain.EventBeforeConnect, ItemID: model.ID, ItemType: domain.ItemTypeEdge})
	err := c.Commands.Execute(ctx, command.Add, map[string]any{
		"type": domain.ItemTypeEdge,
		"edge": model,
	})
	if err != nil {
		if reason = domain.ReasonOf(err); reason == "" {
			c.logger().ErrorContext(ctx, "failed to commit edge", "gesture", AddEdgeName, "error", err)
		}
		c.cancel(ctx, AddEdgeName, model.ID, reason)
		return
	}
	g.Emit(domain.Event{Type: domain.EventAfterConnect, ItemID: model.ID, ItemType: domain.ItemTypeEdge})
	c.commit(ctx, AddEdgeName, model.ID)
}

// canvasLeave resolves the gesture as if released at the last position seen.
func (a *AddEdge) canvasLeave(ctx context.Context, c *Context, _ PointerEvent) {
	if a.state == StateIdle {
		return
	}
	last := a.last
	last.Type = EventMouseUp
	a.pointerUp(ctx, c, last)
}
