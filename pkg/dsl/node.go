package dsl

import "github.com/aretw0/easel/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node and its outgoing
// edges.
type NodeBuilder struct {
	node    domain.NodeModel
	edges   []domain.EdgeModel
	builder *Builder
}

// Label sets the text shown on the node.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Kind sets the shape name that link rules are keyed by.
func (n *NodeBuilder) Kind(kind string) *NodeBuilder {
	n.node.Kind = kind
	return n
}

// At places the node.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.X, n.node.Y = x, y
	return n
}

// Size sets the node box.
func (n *NodeBuilder) Size(width, height float64) *NodeBuilder {
	n.node.Width, n.node.Height = width, height
	return n
}

// Start marks the entry node of a flow.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Start = true
	return n
}

// Transitive limits the node to one outgoing edge.
func (n *NodeBuilder) Transitive() *NodeBuilder {
	n.node.Transitive = true
	return n
}

// Hidden hides the node.
func (n *NodeBuilder) Hidden() *NodeBuilder {
	n.node.Hidden = true
	return n
}

// Under makes the node a subtopic of parent on a mind graph.
func (n *NodeBuilder) Under(parent string) *NodeBuilder {
	n.node.Parent = parent
	return n
}

// Prop sets a free-form property.
func (n *NodeBuilder) Prop(key string, value any) *NodeBuilder {
	if n.node.Props == nil {
		n.node.Props = make(map[string]any)
	}
	n.node.Props[key] = value
	return n
}

// Go adds an edge to the target node using the default anchors.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	return n.Connect(DefaultSourceAnchor, target, DefaultTargetAnchor)
}

// Branch adds a labelled edge to the target node.
func (n *NodeBuilder) Branch(label string, target string) *NodeBuilder {
	n.Go(target)
	n.edges[len(n.edges)-1].Label = label
	return n
}

// Connect adds an edge between explicit anchors.
func (n *NodeBuilder) Connect(anchor int, target string, targetAnchor int) *NodeBuilder {
	n.edges = append(n.edges, domain.EdgeModel{
		Source: domain.AtNode(n.node.ID, anchor),
		Target: domain.AtNode(target, targetAnchor),
	})
	return n
}

// Add starts the next node, so a whole document can be one chain.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying node model.
func (n *NodeBuilder) Build() domain.NodeModel {
	return n.node.Clone()
}
