package command

import "github.com/aretw0/easel/pkg/domain"

// Z-index markers stamped by toFront and toBack.
const (
	ZIndexFront = 1
	ZIndexBack  = 0
)

type reorderCommand struct {
	Base
	front bool
	ids   []string
	prior map[string]int
}

// ToFrontTemplate raises the selected items above everything else.
func ToFrontTemplate() Template {
	return Template{
		Name: ToFront,
		New:  func() Command { return &reorderCommand{front: true} },
	}
}

// ToBackTemplate lowers the selected items below everything else.
func ToBackTemplate() Template {
	return Template{
		Name: ToBack,
		New:  func() Command { return &reorderCommand{front: false} },
	}
}

func (c *reorderCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if len(selectedNodes(env.Graph))+len(selectedEdges(env.Graph)) == 0 {
		return domain.ReasonNoSelection
	}
	return ""
}

func (c *reorderCommand) Init(env *Env) error {
	g := env.Graph
	c.ids = append(selectedNodes(g), selectedEdges(g)...)
	c.prior = make(map[string]int, len(c.ids))
	for _, id := range c.ids {
		if n, ok := g.FindNode(id); ok {
			c.prior[id] = n.ZIndex
		} else if e, ok := g.FindEdge(id); ok {
			c.prior[id] = e.ZIndex
		}
	}
	return nil
}

func (c *reorderCommand) Execute(env *Env) error {
	return c.move(env, c.front, func(string) int {
		if c.front {
			return ZIndexFront
		}
		return ZIndexBack
	})
}

func (c *reorderCommand) Undo(env *Env) error {
	return c.move(env, !c.front, func(id string) int { return c.prior[id] })
}

func (c *reorderCommand) move(env *Env, front bool, z func(string) int) error {
	g := env.Graph
	for _, id := range c.ids {
		if front {
			g.ToFront(id)
		} else {
			g.ToBack(id)
		}
		if err := g.UpdateItem(id, domain.Patch{"z_index": z(id)}); err != nil {
			return err
		}
	}
	return nil
}
