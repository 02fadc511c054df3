package command

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// UpdateParams names the item to patch and the fields to replace.
type UpdateParams struct {
	ID                 string       `json:"id"`
	UpdateModel        domain.Patch `json:"update_model"`
	ForceRefreshLayout bool         `json:"force_refresh_layout"`
}

type updateCommand struct {
	Base
	params UpdateParams
	origin domain.Patch
}

// UpdateTemplate patches one node or edge. Undo restores only the fields the
// patch touched.
func UpdateTemplate() Template {
	return Template{
		Name: Update,
		New:  func() Command { return &updateCommand{} },
	}
}

func (c *updateCommand) Params() any { return &c.params }

func (c *updateCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if _, ok := env.Graph.ItemType(c.params.ID); !ok {
		return domain.ReasonNoItems
	}
	return ""
}

func (c *updateCommand) Init(env *Env) error {
	g := env.Graph
	keys := c.params.UpdateModel.Keys()
	var err error
	if n, ok := g.FindNode(c.params.ID); ok {
		c.origin, err = domain.PickPatch(n, keys)
	} else if e, ok := g.FindEdge(c.params.ID); ok {
		c.origin, err = domain.PickPatch(e, keys)
	} else {
		return fmt.Errorf("update %q: %w", c.params.ID, domain.ErrItemNotFound)
	}
	return err
}

func (c *updateCommand) Execute(env *Env) error {
	return c.apply(env, c.params.UpdateModel)
}

func (c *updateCommand) Undo(env *Env) error {
	return c.apply(env, c.origin)
}

func (c *updateCommand) apply(env *Env, p domain.Patch) error {
	if err := env.Graph.UpdateItem(c.params.ID, p); err != nil {
		return err
	}
	if c.params.ForceRefreshLayout {
		env.Graph.Layout()
	}
	return nil
}
