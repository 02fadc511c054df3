// Package command implements the command engine of the editor: named,
// guarded, reversible units of graph mutation and the linear undo/redo
// history that records them.
package command

import (
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/google/uuid"
)

// Env is the editor session a command runs against.
type Env struct {
	Graph     ports.Graph
	Clipboard *domain.Clipboard
	// NewID generates item ids. Defaults to random UUIDs.
	NewID func() string
}

func (e *Env) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// Command is a single invocation of a template. A fresh value is built for
// every Execute call, so a command may keep whatever Init captured for Undo.
type Command interface {
	// CanExecute returns "" when the command may run, or why it may not.
	CanExecute(env *Env) domain.RejectReason
	ShouldExecute(env *Env) bool
	CanUndo(env *Env) bool
	// Init captures the pre-state needed to build an exact inverse.
	Init(env *Env) error
	Execute(env *Env) error
	Undo(env *Env) error
}

// Parameterized commands accept caller overrides. Params returns a pointer
// to the command's own params, already holding the defaults; overrides are
// decoded onto it by json field name.
type Parameterized interface {
	Params() any
}

// Template is a named command factory.
type Template struct {
	Name      string
	Shortcuts []Shortcut
	// New returns a fresh command holding default params.
	New func() Command
}

// Base provides the default slots: always executable, undoable, nothing to
// capture and nothing to undo. Variants embed it and override what they need.
type Base struct{}

func (Base) CanExecute(*Env) domain.RejectReason { return "" }
func (Base) ShouldExecute(*Env) bool             { return true }
func (Base) CanUndo(*Env) bool                   { return true }
func (Base) Init(*Env) error                     { return nil }
func (Base) Undo(*Env) error                     { return nil }

// ExecuteBatch runs fn with automatic repaint suspended and paints exactly
// once afterwards. The previous auto-paint flag is restored even if fn panics.
func ExecuteBatch(g ports.Painter, fn func() error) error {
	auto := g.AutoPaint()
	g.SetAutoPaint(false)
	defer func() {
		g.Paint()
		g.SetAutoPaint(auto)
	}()
	return fn()
}

func writable(g ports.Graph) domain.RejectReason {
	if g.Mode() == domain.ModeReadonly {
		return domain.ReasonReadOnlyMode
	}
	return ""
}

func selectedNodes(g ports.Graph) []string {
	return g.FindAllByState(domain.ItemTypeNode, domain.StateSelected)
}

func selectedEdges(g ports.Graph) []string {
	return g.FindAllByState(domain.ItemTypeEdge, domain.StateSelected)
}

// setSelected makes ids the only selected items.
func setSelected(g ports.Graph, ids ...string) {
	for _, id := range append(selectedNodes(g), selectedEdges(g)...) {
		g.SetItemState(id, domain.StateSelected, false)
	}
	for _, id := range ids {
		g.SetItemState(id, domain.StateSelected, true)
	}
}

// GraphState derives the selection summary of g.
func GraphState(g ports.Graph) domain.GraphState {
	return domain.DeriveGraphState(selectedNodes(g), selectedEdges(g))
}

func removeExisting(g ports.Graph, ids ...string) error {
	for _, id := range ids {
		if _, ok := g.ItemType(id); !ok {
			continue
		}
		if err := g.RemoveItem(id); err != nil {
			return err
		}
	}
	return nil
}
