package domain

// GraphMode gates what the editor accepts. Every mutating command refuses to
// run in ModeReadonly.
type GraphMode string

const (
	ModeDefault  GraphMode = "default"
	ModeAddNode  GraphMode = "addNode"
	ModeReadonly GraphMode = "readonly"
)

// GraphKind selects between a free-form flow graph and a mind (tree) graph.
type GraphKind string

const (
	KindFlow GraphKind = "flow"
	KindMind GraphKind = "mind"
)

// ItemState is a boolean flag carried by an item in the graph facade.
type ItemState string

const (
	StateActive             ItemState = "active"
	StateActiveAnchorPoints ItemState = "activeAnchorPoints"
	StateSelected           ItemState = "selected"
	StateHighLight          ItemState = "highLight"
	StateError              ItemState = "error"
)

// AnchorPointState is the per-slot annotation computed during an edge gesture.
type AnchorPointState string

const (
	AnchorDefault  AnchorPointState = "default"
	AnchorEnabled  AnchorPointState = "enabled"
	AnchorDisabled AnchorPointState = "disabled"
	AnchorActive   AnchorPointState = "active"
)

// GraphState summarizes the current selection.
type GraphState string

const (
	GraphStateNodeSelected   GraphState = "nodeSelected"
	GraphStateEdgeSelected   GraphState = "edgeSelected"
	GraphStateMultiSelected  GraphState = "multiSelected"
	GraphStateCanvasSelected GraphState = "canvasSelected"
)

// DeriveGraphState computes the selection summary from the selected ids.
func DeriveGraphState(selectedNodes, selectedEdges []string) GraphState {
	switch {
	case len(selectedNodes)+len(selectedEdges) > 1:
		return GraphStateMultiSelected
	case len(selectedNodes) == 1:
		return GraphStateNodeSelected
	case len(selectedEdges) == 1:
		return GraphStateEdgeSelected
	default:
		return GraphStateCanvasSelected
	}
}

// Viewport captures the view transform of a document.
type Viewport struct {
	Zoom float64 `json:"zoom" yaml:"zoom"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// Document is a snapshot of a whole diagram.
type Document struct {
	ID       string      `json:"id" yaml:"id"`
	Kind     GraphKind   `json:"kind" yaml:"kind"`
	Nodes    []NodeModel `json:"nodes" yaml:"nodes"`
	Edges    []EdgeModel `json:"edges" yaml:"edges"`
	Viewport Viewport    `json:"viewport" yaml:"viewport"`
}

// NewDocument returns an empty flow document.
func NewDocument(id string) *Document {
	return &Document{
		ID:       id,
		Kind:     KindFlow,
		Nodes:    []NodeModel{},
		Edges:    []EdgeModel{},
		Viewport: Viewport{Zoom: 1},
	}
}
