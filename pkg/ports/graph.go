package ports

import "github.com/aretw0/easel/pkg/domain"

// ItemStore is the item CRUD and query surface of a graph. Every
// relationship is an id; callers resolve ids through FindNode / FindEdge.
type ItemStore interface {
	AddNode(model domain.NodeModel) error
	AddEdge(model domain.EdgeModel) error
	// RemoveItem removes a node or an edge. Removing a node also removes its
	// incident edges and, on a mind graph, its descendants.
	RemoveItem(id string) error
	// UpdateItem applies a patch to the node or edge with the given id.
	UpdateItem(id string, patch domain.Patch) error

	FindNode(id string) (domain.NodeModel, bool)
	FindEdge(id string) (domain.EdgeModel, bool)
	ItemType(id string) (domain.ItemType, bool)

	// Nodes and Edges return models in paint order (back to front).
	Nodes() []domain.NodeModel
	Edges() []domain.EdgeModel
	InEdges(nodeID string) []domain.EdgeModel
	OutEdges(nodeID string) []domain.EdgeModel

	// Children returns the direct children of a mind graph topic.
	Children(nodeID string) []domain.NodeModel
}

// Selection manages boolean item states such as "selected".
type Selection interface {
	SetItemState(id string, state domain.ItemState, on bool)
	HasState(id string, state domain.ItemState) bool
	FindAllByState(kind domain.ItemType, state domain.ItemState) []string
	ClearItemStates(id string, states ...domain.ItemState)
}

// Handler receives events emitted on the graph bus.
type Handler func(domain.Event)

// EventBus is a synchronous publish/subscribe channel owned by the graph.
type EventBus interface {
	// On subscribes h to events of type t and returns the unsubscribe func.
	On(t domain.EventType, h Handler) func()
	Emit(e domain.Event)
}

// Viewport exposes the view transform.
type Viewport interface {
	Zoom() float64
	MinZoom() float64
	MaxZoom() float64
	// ZoomTo sets the zoom ratio keeping center fixed on screen.
	ZoomTo(ratio float64, center domain.Point)
	Translate(dx, dy float64)
	// FitView zooms and translates so every item fits with padding.
	FitView(padding float64)
	// Size returns the size of the render surface.
	Size() (width, height float64)
	// Layout re-runs the layout of the graph.
	Layout()
	View() domain.Viewport
	SetView(v domain.Viewport)
}

// Painter controls repainting. While AutoPaint is off, mutations are not
// painted until Paint is called.
type Painter interface {
	AutoPaint() bool
	SetAutoPaint(on bool)
	Paint()
}

// Anchors exposes per-node anchor slot annotations used by edge gestures.
type Anchors interface {
	AnchorCount(nodeID string) int
	SetAnchorStates(nodeID string, states []domain.AnchorPointState)
	AnchorState(nodeID string, index int) domain.AnchorPointState
}

// Graph is the facade the command engine and the gesture controllers consume.
type Graph interface {
	ItemStore
	Selection
	EventBus
	Viewport
	Painter
	Anchors

	Mode() domain.GraphMode
	SetMode(mode domain.GraphMode)
	Kind() domain.GraphKind

	ToFront(id string)
	ToBack(id string)
	SetVisible(id string, visible bool)
}
