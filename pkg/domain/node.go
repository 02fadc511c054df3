package domain

import "github.com/mohae/deepcopy"

// ItemType distinguishes the two kinds of items living in a graph.
type ItemType string

const (
	ItemTypeNode ItemType = "node"
	ItemTypeEdge ItemType = "edge"
)

// DefaultAnchorCount is the number of anchor slots a node exposes when its
// model does not declare any (top, right, bottom, left).
const DefaultAnchorCount = 4

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeModel is the serializable model of a node.
type NodeModel struct {
	ID    string `json:"id" yaml:"id"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"` // shape name, keys LinkRules
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// Anchors holds anchor slot positions relative to the node box (0..1).
	// When empty the node has DefaultAnchorCount slots.
	Anchors []Point `json:"anchors,omitempty" yaml:"anchors,omitempty"`

	// Parent is the id of the parent topic on a mind graph.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Transitive nodes accept at most one outgoing edge regardless of LinkRules.
	Transitive bool `json:"transitive,omitempty" yaml:"transitive,omitempty"`
	Start      bool `json:"start,omitempty" yaml:"start,omitempty"`

	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ZIndex int  `json:"z_index,omitempty" yaml:"z_index,omitempty"`

	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// AnchorCount returns the number of anchor slots of the node.
func (n NodeModel) AnchorCount() int {
	if len(n.Anchors) == 0 {
		return DefaultAnchorCount
	}
	return len(n.Anchors)
}

// Clone returns a deep copy of the model.
func (n NodeModel) Clone() NodeModel {
	return deepcopy.Copy(n).(NodeModel)
}

// Endpoint is one end of an edge. It is bound to a node anchor when Node is
// set and is a free point at (X, Y) otherwise.
type Endpoint struct {
	Node   string  `json:"node,omitempty" yaml:"node,omitempty"`
	Anchor int     `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
}

// AtNode returns an endpoint bound to the given node anchor.
func AtNode(nodeID string, anchor int) Endpoint {
	return Endpoint{Node: nodeID, Anchor: anchor}
}

// AtPoint returns a free endpoint.
func AtPoint(p Point) Endpoint {
	return Endpoint{X: p.X, Y: p.Y}
}

// IsFree reports whether the endpoint is a free point.
func (e Endpoint) IsFree() bool { return e.Node == "" }

// SameBinding reports whether two node-bound endpoints reference the same
// node and anchor. Free endpoints never share a binding.
func (e Endpoint) SameBinding(o Endpoint) bool {
	return !e.IsFree() && e.Node == o.Node && e.Anchor == o.Anchor
}

// EdgeModel is the serializable model of an edge.
type EdgeModel struct {
	ID     string   `json:"id" yaml:"id"`
	Kind   string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
	Source Endpoint `json:"source" yaml:"source"`
	Target Endpoint `json:"target" yaml:"target"`

	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ZIndex int  `json:"z_index,omitempty" yaml:"z_index,omitempty"`

	// Draft marks a speculative edge owned by a gesture. Drafts never enter
	// history and are skipped by snapshots.
	Draft bool `json:"draft,omitempty" yaml:"draft,omitempty"`

	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// Clone returns a deep copy of the model.
func (e EdgeModel) Clone() EdgeModel {
	return deepcopy.Copy(e).(EdgeModel)
}

// Connects reports whether the edge runs from node source to node target.
func (e EdgeModel) Connects(source, target string) bool {
	return e.Source.Node == source && e.Target.Node == target
}

// Touches reports whether either endpoint is bound to the node.
func (e EdgeModel) Touches(nodeID string) bool {
	return e.Source.Node == nodeID || e.Target.Node == nodeID
}
