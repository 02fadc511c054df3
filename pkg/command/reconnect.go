package command

import (
	"fmt"

	"github.com/aretw0/easel/pkg/domain"
)

// ReconnectParams carries the edge as it was before the gesture and the
// endpoint fields to overwrite.
type ReconnectParams struct {
	Model       domain.EdgeModel `json:"model"`
	UpdateModel domain.Patch     `json:"update_model"`
}

type reconnectCommand struct {
	Base
	params ReconnectParams
	next   domain.EdgeModel
}

// ReconnectTemplate re-inserts an edge with new endpoints. The edge keeps
// its id, so undo and redo can swap whole models.
func ReconnectTemplate() Template {
	return Template{
		Name: Reconnect,
		New:  func() Command { return &reconnectCommand{} },
	}
}

func (c *reconnectCommand) Params() any { return &c.params }

func (c *reconnectCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if c.params.Model.ID == "" {
		return domain.ReasonNoItems
	}
	return ""
}

func (c *reconnectCommand) Init(env *Env) error {
	c.params.Model = c.params.Model.Clone()
	c.params.Model.Draft = false
	next, err := domain.ApplyPatch(c.params.Model, c.params.UpdateModel)
	if err != nil {
		return fmt.Errorf("reconnect %q: %w", c.params.Model.ID, err)
	}
	next.ID = c.params.Model.ID
	next.Draft = false
	c.next = next
	return nil
}

func (c *reconnectCommand) Execute(env *Env) error {
	return c.swap(env, c.next)
}

func (c *reconnectCommand) Undo(env *Env) error {
	return c.swap(env, c.params.Model)
}

func (c *reconnectCommand) swap(env *Env, model domain.EdgeModel) error {
	if err := removeExisting(env.Graph, model.ID); err != nil {
		return err
	}
	return env.Graph.AddEdge(model)
}
