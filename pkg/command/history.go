package command

import "github.com/aretw0/easel/pkg/domain"

// Undo and redo run with the manager lock already held by Execute, so they
// reach into the queue directly.

type undoCommand struct {
	Base
	m *Manager
}

func undoTemplate(m *Manager) Template {
	return Template{
		Name: Undo,
		Shortcuts: []Shortcut{
			Key("KeyZ", Meta),
			Key("KeyZ", Ctrl),
		},
		New: func() Command { return &undoCommand{m: m} },
	}
}

func (c *undoCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if c.m.index == 0 {
		return domain.ReasonNothingToUndo
	}
	return ""
}

func (c *undoCommand) CanUndo(*Env) bool { return false }

func (c *undoCommand) Execute(env *Env) error {
	env.Graph.Emit(domain.Event{Type: domain.EventHidePortal})
	if err := c.m.queue[c.m.index-1].cmd.Undo(env); err != nil {
		return err
	}
	c.m.index--
	return nil
}

type redoCommand struct {
	Base
	m *Manager
}

func redoTemplate(m *Manager) Template {
	return Template{
		Name: Redo,
		Shortcuts: []Shortcut{
			Key("KeyZ", Meta, Shift),
			Key("KeyZ", Ctrl, Shift),
		},
		New: func() Command { return &redoCommand{m: m} },
	}
}

func (c *redoCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if c.m.index >= len(c.m.queue) {
		return domain.ReasonNothingToRedo
	}
	return ""
}

func (c *redoCommand) CanUndo(*Env) bool { return false }

func (c *redoCommand) Execute(env *Env) error {
	env.Graph.Emit(domain.Event{Type: domain.EventHidePortal})
	if err := c.m.queue[c.m.index].cmd.Execute(env); err != nil {
		return err
	}
	c.m.index++
	return nil
}
