package command

import (
	"math"

	"github.com/aretw0/easel/pkg/domain"
)

// PasteOffset shifts pasted and duplicated nodes away from their source.
const PasteOffset = 10

type copyCommand struct {
	Base
}

// CopyTemplate copies the selected nodes into the session clipboard.
func CopyTemplate() Template {
	return Template{
		Name:      Copy,
		Shortcuts: []Shortcut{Key("KeyC", Meta), Key("KeyC", Ctrl)},
		New:       func() Command { return &copyCommand{} },
	}
}

func (c *copyCommand) CanExecute(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if len(selectedNodes(env.Graph)) == 0 {
		return domain.ReasonNoSelection
	}
	return ""
}

func (c *copyCommand) CanUndo(*Env) bool { return false }

func (c *copyCommand) Execute(env *Env) error {
	var nodes []domain.NodeModel
	for _, id := range selectedNodes(env.Graph) {
		if n, ok := env.Graph.FindNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	env.Clipboard.Set(nodes)
	return nil
}

// insertNodes is shared by paste, pasteHere and duplicate: Init prepares the
// copies, Execute adds and selects them, Undo removes them.
type insertNodes struct {
	Base
	added []domain.NodeModel
}

func (c *insertNodes) Execute(env *Env) error {
	g := env.Graph
	ids := make([]string, len(c.added))
	for i, n := range c.added {
		if err := g.AddNode(n); err != nil {
			return err
		}
		ids[i] = n.ID
	}
	setSelected(g, ids...)
	if len(ids) == 1 {
		g.Emit(domain.Event{Type: domain.EventShowActionMenu, ItemID: ids[0], ItemType: domain.ItemTypeNode})
	}
	return nil
}

func (c *insertNodes) Undo(env *Env) error {
	ids := make([]string, len(c.added))
	for i, n := range c.added {
		ids[i] = n.ID
	}
	return removeExisting(env.Graph, ids...)
}

// copies clones nodes with fresh ids, shifted by dx, dy. Parent links between
// copied nodes follow the new ids; links to nodes outside the set are kept.
func copies(env *Env, nodes []domain.NodeModel, dx, dy float64) []domain.NodeModel {
	ids := make(map[string]string, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = env.newID()
	}
	out := make([]domain.NodeModel, 0, len(nodes))
	for _, n := range nodes {
		n = n.Clone()
		n.ID = ids[n.ID]
		if p, ok := ids[n.Parent]; ok {
			n.Parent = p
		} else if _, exists := env.Graph.FindNode(n.Parent); !exists {
			n.Parent = ""
		}
		n.X += dx
		n.Y += dy
		out = append(out, n)
	}
	return out
}

func clipboardReady(env *Env) domain.RejectReason {
	if r := writable(env.Graph); r != "" {
		return r
	}
	if env.Clipboard == nil || env.Clipboard.Len() == 0 {
		return domain.ReasonEmptyClipboard
	}
	return ""
}

type pasteCommand struct {
	insertNodes
}

// PasteTemplate inserts the clipboard content shifted by PasteOffset.
func PasteTemplate() Template {
	return Template{
		Name:      Paste,
		Shortcuts: []Shortcut{Key("KeyV", Meta), Key("KeyV", Ctrl)},
		New:       func() Command { return &pasteCommand{} },
	}
}

func (c *pasteCommand) CanExecute(env *Env) domain.RejectReason {
	return clipboardReady(env)
}

func (c *pasteCommand) Init(env *Env) error {
	c.added = copies(env, env.Clipboard.Nodes(), PasteOffset, PasteOffset)
	return nil
}

// PasteHereParams is the canvas point the clipboard content is moved to.
type PasteHereParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type pasteHereCommand struct {
	insertNodes
	params PasteHereParams
}

// PasteHereTemplate inserts the clipboard content with the top-left corner
// of its bounding box at the given point.
func PasteHereTemplate() Template {
	return Template{
		Name: PasteHere,
		New:  func() Command { return &pasteHereCommand{} },
	}
}

func (c *pasteHereCommand) Params() any { return &c.params }

func (c *pasteHereCommand) CanExecute(env *Env) domain.RejectReason {
	return clipboardReady(env)
}

func (c *pasteHereCommand) Init(env *Env) error {
	nodes := env.Clipboard.Nodes()
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Width/2)
		minY = math.Min(minY, n.Y-n.Height/2)
	}
	c.added = copies(env, nodes, c.params.X-minX, c.params.Y-minY)
	return nil
}
