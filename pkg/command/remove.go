package command

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

type removeCommand struct {
	Base
	nodes []domain.NodeModel
	edges []domain.EdgeModel
}

// RemoveTemplate deletes the selection. On a flow graph it takes the selected
// nodes with their incident edges plus the selected edges; on a mind graph it
// takes the selected topic with its whole subtree.
func RemoveTemplate() Template {
	return Template{
		Name:      Remove,
		Shortcuts: []Shortcut{Key("Delete"), Key("Backspace")},
		New:       func() Command { return &removeCommand{} },
	}
}

func (c *removeCommand) CanExecute(env *Env) domain.RejectReason {
	g := env.Graph
	if r := writable(g); r != "" {
		return r
	}
	nodes := selectedNodes(g)
	if g.Kind() == domain.KindMind {
		if len(nodes) == 0 {
			return domain.ReasonNoSelection
		}
		return ""
	}
	if len(nodes) == 0 && len(selectedEdges(g)) == 0 {
		return domain.ReasonNoSelection
	}
	return ""
}

func (c *removeCommand) Init(env *Env) error {
	g := env.Graph
	var roots []string
	if g.Kind() == domain.KindMind {
		roots = selectedNodes(g)[:1]
	} else {
		roots = selectedNodes(g)
	}

	seenNode := map[string]bool{}
	for _, id := range roots {
		c.collect(g, id, seenNode)
	}

	seenEdge := map[string]bool{}
	addEdge := func(e domain.EdgeModel) {
		if !seenEdge[e.ID] {
			seenEdge[e.ID] = true
			c.edges = append(c.edges, e)
		}
	}
	for _, n := range c.nodes {
		for _, e := range g.InEdges(n.ID) {
			addEdge(e)
		}
		for _, e := range g.OutEdges(n.ID) {
			addEdge(e)
		}
	}
	if g.Kind() != domain.KindMind {
		for _, id := range selectedEdges(g) {
			if e, ok := g.FindEdge(id); ok {
				addEdge(e)
			}
		}
	}
	return nil
}

// collect appends id and its descendants in preorder, so re-adding in
// order always finds the parent in place.
func (c *removeCommand) collect(g ports.Graph, id string, seen map[string]bool) {
	if seen[id] {
		return
	}
	n, ok := g.FindNode(id)
	if !ok {
		return
	}
	seen[id] = true
	c.nodes = append(c.nodes, n)
	for _, child := range g.Children(id) {
		c.collect(g, child.ID, seen)
	}
}

func (c *removeCommand) Execute(env *Env) error {
	g := env.Graph
	g.Emit(domain.Event{Type: domain.EventHidePortal})
	for _, e := range c.edges {
		if err := removeExisting(g, e.ID); err != nil {
			return err
		}
	}
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if err := removeExisting(g, c.nodes[i].ID); err != nil {
			return err
		}
	}
	if len(c.nodes) > 0 {
		g.Emit(domain.Event{Type: domain.EventAfterRemoveNode, ItemID: c.nodes[0].ID, ItemType: domain.ItemTypeNode})
	}
	return nil
}

func (c *removeCommand) Undo(env *Env) error {
	g := env.Graph
	for _, n := range c.nodes {
		if err := g.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range c.edges {
		if err := g.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}
