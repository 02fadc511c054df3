package command

import "github.com/aretw0/easel/pkg/domain"

// VisibilityParams lists the edges to toggle. Empty means every edge
// currently in the opposite state.
type VisibilityParams struct {
	IDs []string `json:"ids"`
}

type visibilityCommand struct {
	Base
	show   bool
	params VisibilityParams
}

// HideEdgesTemplate hides edges.
func HideEdgesTemplate() Template {
	return Template{
		Name: HideEdges,
		New:  func() Command { return &visibilityCommand{show: false} },
	}
}

// ShowEdgesTemplate shows edges.
func ShowEdgesTemplate() Template {
	return Template{
		Name: ShowEdges,
		New:  func() Command { return &visibilityCommand{show: true} },
	}
}

func (c *visibilityCommand) Params() any { return &c.params }

// candidates returns the edges whose visibility the command would flip.
func (c *visibilityCommand) candidates(env *Env) []string {
	var ids []string
	for _, e := range env.Graph.Edges() {
		if e.Hidden == c.show {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (c *visibilityCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if len(c.params.IDs) == 0 && len(c.candidates(env)) == 0 {
		return domain.ReasonNoItems
	}
	return ""
}

func (c *visibilityCommand) Init(env *Env) error {
	if len(c.params.IDs) == 0 {
		c.params.IDs = c.candidates(env)
	}
	return nil
}

func (c *visibilityCommand) Execute(env *Env) error {
	c.apply(env, c.show)
	return nil
}

func (c *visibilityCommand) Undo(env *Env) error {
	c.apply(env, !c.show)
	return nil
}

func (c *visibilityCommand) apply(env *Env, visible bool) {
	g := env.Graph
	for _, id := range c.params.IDs {
		g.SetVisible(id, visible)
	}
	g.Emit(domain.Event{Type: domain.EventAfterVisibilityChangeAllEdges, Params: visible})
}
