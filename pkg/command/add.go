package command

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// AddParams selects the item to insert. Type picks which of Node or Edge is used.
type AddParams struct {
	Type domain.ItemType  `json:"type"`
	Node domain.NodeModel `json:"node"`
	Edge domain.EdgeModel `json:"edge"`
}

type addCommand struct {
	Base
	params AddParams
}

// AddTemplate inserts a node or an edge and selects it.
func AddTemplate() Template {
	return Template{
		Name: Add,
		New: func() Command {
			return &addCommand{params: AddParams{Type: domain.ItemTypeNode}}
		},
	}
}

func (c *addCommand) Params() any { return &c.params }

func (c *addCommand) CanExecute(env *Env) domain.RejectReason {
	return writable(env.Graph)
}

func (c *addCommand) Init(env *Env) error {
	switch c.params.Type {
	case domain.ItemTypeNode:
		c.params.Node = c.params.Node.Clone()
		if c.params.Node.ID == "" {
			c.params.Node.ID = env.newID()
		}
	case domain.ItemTypeEdge:
		c.params.Edge = c.params.Edge.Clone()
		c.params.Edge.Draft = false
		if c.params.Edge.ID == "" {
			c.params.Edge.ID = env.newID()
		}
	default:
		return fmt.Errorf("unknown item type %q", c.params.Type)
	}
	return nil
}

func (c *addCommand) id() string {
	if c.params.Type == domain.ItemTypeEdge {
		return c.params.Edge.ID
	}
	return c.params.Node.ID
}

func (c *addCommand) Execute(env *Env) error {
	g := env.Graph
	var err error
	if c.params.Type == domain.ItemTypeEdge {
		err = g.AddEdge(c.params.Edge)
	} else {
		err = g.AddNode(c.params.Node)
	}
	if err != nil {
		return err
	}
	setSelected(g, c.id())
	g.Emit(domain.Event{Type: domain.EventShowActionMenu, ItemID: c.id(), ItemType: c.params.Type})
	return nil
}

func (c *addCommand) Undo(env *Env) error {
	return removeExisting(env.Graph, c.id())
}
