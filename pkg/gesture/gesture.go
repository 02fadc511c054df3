// Package gesture implements the pointer-driven edge authoring state
// machines: dragging a new edge out of an anchor (AddEdge) and dragging the
// handle of an existing edge onto another anchor (RepointEdge).
//
// Controllers never mutate history themselves. Drafts and working copies go
// straight to the graph facade and are always removed again; a successful
// gesture ends in exactly one command issued through the Executor.
package gesture

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/topology"
	"github.com/google/uuid"
)

// EventName names a pointer event delivered by the host.
type EventName string

const (
	EventNodeMouseEnter EventName = "node:mouseenter"
	EventNodeMouseLeave EventName = "node:mouseleave"
	EventNodeMouseDown  EventName = "node:mousedown"
	EventEdgeMouseDown  EventName = "edge:mousedown"
	EventMouseMove      EventName = "mousemove"
	EventMouseUp        EventName = "mouseup"
	EventCanvasLeave    EventName = "canvas:mouseleave"
)

// Target is the shape under the pointer within the hit item.
type Target string

const (
	TargetBody        Target = ""
	TargetAnchor      Target = "anchor"
	TargetHandleStart Target = "handle-start"
	TargetHandleEnd   Target = "handle-end"
)

// PointerEvent is one pointer notification in canvas coordinates.
type PointerEvent struct {
	Type     EventName       `json:"type" yaml:"type"`
	X        float64         `json:"x" yaml:"x"`
	Y        float64         `json:"y" yaml:"y"`
	ItemID   string          `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	ItemType domain.ItemType `json:"item_type,omitempty" yaml:"item_type,omitempty"`
	Target   Target          `json:"target,omitempty" yaml:"target,omitempty"`
	Anchor   int             `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// Point returns the pointer position.
func (e PointerEvent) Point() domain.Point {
	return domain.Point{X: e.X, Y: e.Y}
}

func (e PointerEvent) onAnchor() bool {
	return e.ItemType == domain.ItemTypeNode && e.ItemID != "" && e.Target == TargetAnchor
}

// State is the phase a controller is in.
type State string

const (
	StateIdle          State = "idle"
	StateSourceArmed   State = "sourceArmed"
	StateDragging      State = "dragging"
	StateHandleGrabbed State = "handleGrabbed"
	StateRedirecting   State = "redirecting"
)

// Executor issues commands on behalf of a gesture.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) error
}

// Context is what a transition runs against.
type Context struct {
	Graph      ports.Graph
	Commands   Executor
	Logger     *slog.Logger
	Hooks      domain.LifecycleHooks
	DocumentID string
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func (c *Context) commit(ctx context.Context, gesture, edgeID string) {
	c.logger().DebugContext(ctx, "gesture committed", "gesture", gesture, "edge", edgeID)
	if c.Hooks.OnGestureCommit != nil {
		c.Hooks.OnGestureCommit(ctx, c.event(gesture, edgeID, ""))
	}
}

func (c *Context) cancel(ctx context.Context, gesture, edgeID string, reason domain.RejectReason) {
	c.logger().DebugContext(ctx, "gesture cancelled", "gesture", gesture, "edge", edgeID, "reason", reason)
	if c.Hooks.OnGestureCancel != nil {
		c.Hooks.OnGestureCancel(ctx, c.event(gesture, edgeID, reason))
	}
}

func (c *Context) event(gesture, edgeID string, reason domain.RejectReason) *domain.GestureEvent {
	return &domain.GestureEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), DocumentID: c.DocumentID},
		Gesture:   gesture,
		EdgeID:    edgeID,
		Reason:    reason,
	}
}

// Transition handles one pointer event.
type Transition func(ctx context.Context, c *Context, e PointerEvent)

// Table maps the events a controller subscribes to onto its transitions.
type Table map[EventName]Transition

// Controller is a gesture state machine.
type Controller interface {
	Name() string
	State() State
	Events() Table
}

// Router fans pointer events out to controllers in order.
type Router struct {
	controllers []Controller
}

// NewRouter creates a router over the given controllers.
func NewRouter(controllers ...Controller) *Router {
	return &Router{controllers: controllers}
}

// Handle delivers e to every controller subscribed to e.Type.
func (r *Router) Handle(ctx context.Context, c *Context, e PointerEvent) {
	for _, ctrl := range r.controllers {
		if fn, ok := ctrl.Events()[e.Type]; ok {
			fn(ctx, c, e)
		}
	}
}

// Controllers returns the routed controllers.
func (r *Router) Controllers() []Controller {
	return r.controllers
}

// Config holds the knobs shared by both controllers.
type Config struct {
	// EdgeKind is the kind stamped on new edges.
	EdgeKind string
	// SourceAnchorState scores the anchors of a node the pointer enters
	// before a gesture starts. Defaults to enabled.
	SourceAnchorState func(g ports.Graph, node domain.NodeModel, anchor int) domain.AnchorPointState
	// TargetAnchorState scores each anchor of every other node once a source
	// anchor is armed. Defaults to enabled.
	TargetAnchorState func(g ports.Graph, source domain.Endpoint, node domain.NodeModel, anchor int) domain.AnchorPointState
	LinkRules         domain.LinkRules
	AllowMultiEdge    bool
	// Validate is a final caller check on the edge about to be committed.
	Validate func(g ports.Graph, edge domain.EdgeModel) bool
	// NewID names new edges. Defaults to random UUIDs.
	NewID func() string
}

func (cfg Config) withDefaults() Config {
	if cfg.SourceAnchorState == nil {
		cfg.SourceAnchorState = func(ports.Graph, domain.NodeModel, int) domain.AnchorPointState {
			return domain.AnchorEnabled
		}
	}
	if cfg.TargetAnchorState == nil {
		cfg.TargetAnchorState = func(ports.Graph, domain.Endpoint, domain.NodeModel, int) domain.AnchorPointState {
			return domain.AnchorEnabled
		}
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return cfg
}

func (cfg Config) rules() topology.Rules {
	return topology.Rules{LinkRules: cfg.LinkRules, AllowMultiEdge: cfg.AllowMultiEdge}
}

func (cfg Config) validate(g ports.Graph, edge domain.EdgeModel) bool {
	return cfg.Validate == nil || cfg.Validate(g, edge)
}

func readonly(g ports.Graph) bool {
	return g.Mode() == domain.ModeReadonly
}

func showAnchors(g ports.Graph, nodeID string, states []domain.AnchorPointState) {
	g.SetAnchorStates(nodeID, states)
	g.SetItemState(nodeID, domain.StateActiveAnchorPoints, true)
}

func hideAnchors(g ports.Graph, nodeID string) {
	g.SetAnchorStates(nodeID, nil)
	g.SetItemState(nodeID, domain.StateActiveAnchorPoints, false)
}

func hideAllAnchors(g ports.Graph) {
	for _, n := range g.Nodes() {
		hideAnchors(g, n.ID)
	}
}

// setAnchor changes one slot of a node's anchor annotations.
func setAnchor(g ports.Graph, nodeID string, index int, state domain.AnchorPointState) {
	count := g.AnchorCount(nodeID)
	if index < 0 || index >= count {
		return
	}
	states := make([]domain.AnchorPointState, count)
	for i := range states {
		states[i] = g.AnchorState(nodeID, i)
	}
	states[index] = state
	g.SetAnchorStates(nodeID, states)
}

func allEnabled(n int) []domain.AnchorPointState {
	states := make([]domain.AnchorPointState, n)
	for i := range states {
		states[i] = domain.AnchorEnabled
	}
	return states
}

func usable(s domain.AnchorPointState) bool {
	return s == domain.AnchorEnabled || s == domain.AnchorActive
}
