package dsl

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// Default anchors used by Go and Branch: right side out, left side in.
const (
	DefaultSourceAnchor = 1
	DefaultTargetAnchor = 3
)

// Builder manages the document construction.
type Builder struct {
	id    string
	kind  domain.GraphKind
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new document builder. An empty kind means a flow.
func New(id string, kind domain.GraphKind) *Builder {
	if kind == "" {
		kind = domain.KindFlow
	}
	return &Builder{
		id:    id,
		kind:  kind,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the document.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NodeModel{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build returns the document. Nodes keep the order they were added in and
// edges follow their source node. It fails if an edge or a parent names a
// node that was never added.
func (b *Builder) Build() (*domain.Document, error) {
	doc := domain.NewDocument(b.id)
	doc.Kind = b.kind

	seen := make(map[string]int)
	for _, id := range b.order {
		nb := b.nodes[id]
		if p := nb.node.Parent; p != "" {
			if _, ok := b.nodes[p]; !ok {
				return nil, fmt.Errorf("node %q: parent %q: %w", id, p, domain.ErrItemNotFound)
			}
		}
		doc.Nodes = append(doc.Nodes, nb.node.Clone())

		for _, e := range nb.edges {
			if _, ok := b.nodes[e.Target.Node]; !ok {
				return nil, fmt.Errorf("edge from %q: target %q: %w", id, e.Target.Node, domain.ErrItemNotFound)
			}
			key := e.Source.Node + "-" + e.Target.Node
			seen[key]++
			if e.ID == "" {
				e.ID = key
				if n := seen[key]; n > 1 {
					e.ID = fmt.Sprintf("%s-%d", key, n)
				}
			}
			doc.Edges = append(doc.Edges, e.Clone())
		}
	}
	return doc, nil
}

// MustBuild is like Build but panics on error. It is meant for fixtures.
func (b *Builder) MustBuild() *domain.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
