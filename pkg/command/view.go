package command

import (
	"math"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// ZoomStep is the relative change applied by zoomIn and zoomOut.
const ZoomStep = 0.05

// FitPadding is the padding autoZoom leaves around the content.
const FitPadding = 5

// viewCommand is the base of the view commands: never undoable and allowed
// in read-only mode.
type viewCommand struct {
	Base
}

func (viewCommand) CanUndo(*Env) bool { return false }

func center(g ports.Viewport) domain.Point {
	w, h := g.Size()
	return domain.Point{X: w / 2, Y: h / 2}
}

type zoomCommand struct {
	viewCommand
	factor float64
}

// ZoomInTemplate zooms in one step around the viewport center.
func ZoomInTemplate() Template {
	return Template{
		Name:      ZoomIn,
		Shortcuts: []Shortcut{Key("Equal", Meta), Key("Equal", Ctrl)},
		New:       func() Command { return &zoomCommand{factor: 1 + ZoomStep} },
	}
}

// ZoomOutTemplate zooms out one step around the viewport center.
func ZoomOutTemplate() Template {
	return Template{
		Name:      ZoomOut,
		Shortcuts: []Shortcut{Key("Minus", Meta), Key("Minus", Ctrl)},
		New:       func() Command { return &zoomCommand{factor: 1 - ZoomStep} },
	}
}

func (c *zoomCommand) CanExecute(env *Env) domain.RejectReason {
	g := env.Graph
	if c.factor > 1 && g.Zoom() >= g.MaxZoom() {
		return domain.ReasonZoomLimit
	}
	if c.factor < 1 && g.Zoom() <= g.MinZoom() {
		return domain.ReasonZoomLimit
	}
	return ""
}

func (c *zoomCommand) Execute(env *Env) error {
	g := env.Graph
	g.Emit(domain.Event{Type: domain.EventHidePortal})
	ratio := math.Min(math.Max(g.Zoom()*c.factor, g.MinZoom()), g.MaxZoom())
	g.ZoomTo(ratio, center(g))
	return nil
}

type resetZoomCommand struct {
	viewCommand
}

// ResetZoomTemplate restores the 1:1 zoom ratio.
func ResetZoomTemplate() Template {
	return Template{
		Name: ResetZoom,
		New:  func() Command { return &resetZoomCommand{} },
	}
}

func (c *resetZoomCommand) Execute(env *Env) error {
	env.Graph.Emit(domain.Event{Type: domain.EventHidePortal})
	env.Graph.ZoomTo(1, center(env.Graph))
	return nil
}

type autoZoomCommand struct {
	viewCommand
}

// AutoZoomTemplate fits the whole content into the viewport.
func AutoZoomTemplate() Template {
	return Template{
		Name: AutoZoom,
		New:  func() Command { return &autoZoomCommand{} },
	}
}

func (c *autoZoomCommand) CanExecute(env *Env) domain.RejectReason {
	if len(env.Graph.Nodes()) == 0 && len(env.Graph.Edges()) == 0 {
		return domain.ReasonNoItems
	}
	return ""
}

func (c *autoZoomCommand) Execute(env *Env) error {
	env.Graph.Emit(domain.Event{Type: domain.EventHidePortal})
	env.Graph.FitView(FitPadding)
	return nil
}
