package command

import "github.com/aretw0/easel/pkg/domain"

type duplicateCommand struct {
	insertNodes
	mapNode func(domain.NodeModel) domain.NodeModel
}

// DuplicateTemplate copies the selected nodes in place, shifted by
// PasteOffset. mapNode, when set, rewrites each copy after it got its new id
// and position; otherwise copies simply lose the start flag.
func DuplicateTemplate(mapNode func(domain.NodeModel) domain.NodeModel) Template {
	return Template{
		Name:      Duplicate,
		Shortcuts: []Shortcut{Key("KeyD", Shift)},
		New:       func() Command { return &duplicateCommand{mapNode: mapNode} },
	}
}

func (c *duplicateCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if len(selectedNodes(env.Graph)) == 0 {
		return domain.ReasonNoSelection
	}
	return ""
}

func (c *duplicateCommand) Init(env *Env) error {
	var nodes []domain.NodeModel
	for _, id := range selectedNodes(env.Graph) {
		if n, ok := env.Graph.FindNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	c.added = copies(env, nodes, PasteOffset, PasteOffset)
	for i, n := range c.added {
		if c.mapNode != nil {
			n = c.mapNode(n)
		} else {
			n.Start = false
		}
		c.added[i] = n
	}
	return nil
}
