package memory

import (
	"fmt"
	"math"
	"slices"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// Graph is an in-memory implementation of ports.Graph: an arena of node and
// edge models keyed by id. It keeps item states, anchor annotations, the
// viewport and the paint order, and counts repaints instead of drawing.
//
// Graph is not safe for concurrent use. Hosts serialize access per document
// (see package session).
type Graph struct {
	kind domain.GraphKind
	mode domain.GraphMode

	nodes  map[string]*domain.NodeModel
	edges  map[string]*domain.EdgeModel
	order  []string
	states map[string]map[domain.ItemState]bool
	anchor map[string][]domain.AnchorPointState

	handlers map[domain.EventType][]*subscription
	nextSub  int

	zoom, minZoom, maxZoom float64
	tx, ty                 float64
	width, height          float64

	autoPaint bool
	paints    int
	layouts   int
}

type subscription struct {
	id int
	fn ports.Handler
}

// Option configures a Graph.
type Option func(*Graph)

// WithKind selects a flow or mind graph.
func WithKind(kind domain.GraphKind) Option {
	return func(g *Graph) { g.kind = kind }
}

// WithZoomLimits bounds the zoom ratio.
func WithZoomLimits(min, max float64) Option {
	return func(g *Graph) {
		g.minZoom = min
		g.maxZoom = max
	}
}

// WithSize sets the size of the render surface.
func WithSize(width, height float64) Option {
	return func(g *Graph) {
		g.width = width
		g.height = height
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		kind:      domain.KindFlow,
		mode:      domain.ModeDefault,
		nodes:     make(map[string]*domain.NodeModel),
		edges:     make(map[string]*domain.EdgeModel),
		states:    make(map[string]map[domain.ItemState]bool),
		anchor:    make(map[string][]domain.AnchorPointState),
		handlers:  make(map[domain.EventType][]*subscription),
		zoom:      1,
		minZoom:   0.2,
		maxZoom:   10,
		width:     800,
		height:    600,
		autoPaint: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ ports.Graph = (*Graph)(nil)

// Kind returns the graph kind.
func (g *Graph) Kind() domain.GraphKind { return g.kind }

// Mode returns the current mode.
func (g *Graph) Mode() domain.GraphMode { return g.mode }

// SetMode switches the mode and emits EventModeChange.
func (g *Graph) SetMode(mode domain.GraphMode) {
	if g.mode == mode {
		return
	}
	g.mode = mode
	g.Emit(domain.Event{Type: domain.EventModeChange, Mode: mode})
}

// --- items ---

func (g *Graph) AddNode(model domain.NodeModel) error {
	if model.ID == "" {
		return fmt.Errorf("add node: %w", domain.ErrMissingID)
	}
	if _, taken := g.ItemType(model.ID); taken {
		return fmt.Errorf("add node %q: %w", model.ID, domain.ErrDuplicateID)
	}
	if model.Parent != "" {
		if _, ok := g.nodes[model.Parent]; !ok {
			return fmt.Errorf("add node %q under %q: %w", model.ID, model.Parent, domain.ErrItemNotFound)
		}
	}
	m := model.Clone()
	g.nodes[m.ID] = &m
	g.order = append(g.order, m.ID)
	g.changed()
	g.Emit(domain.Event{Type: domain.EventAfterAddItem, ItemID: m.ID, ItemType: domain.ItemTypeNode})
	return nil
}

func (g *Graph) AddEdge(model domain.EdgeModel) error {
	if model.ID == "" {
		return fmt.Errorf("add edge: %w", domain.ErrMissingID)
	}
	if _, taken := g.ItemType(model.ID); taken {
		return fmt.Errorf("add edge %q: %w", model.ID, domain.ErrDuplicateID)
	}
	if err := g.checkEndpoints(model); err != nil {
		return fmt.Errorf("add edge %q: %w", model.ID, err)
	}
	m := model.Clone()
	g.edges[m.ID] = &m
	g.order = append(g.order, m.ID)
	g.changed()
	g.Emit(domain.Event{Type: domain.EventAfterAddItem, ItemID: m.ID, ItemType: domain.ItemTypeEdge})
	return nil
}

func (g *Graph) checkEndpoints(e domain.EdgeModel) error {
	for _, end := range []domain.Endpoint{e.Source, e.Target} {
		if end.IsFree() {
			continue
		}
		if _, ok := g.nodes[end.Node]; !ok {
			return fmt.Errorf("node %q: %w", end.Node, domain.ErrInvalidEndpoint)
		}
	}
	return nil
}

// RemoveItem removes a node or an edge. A node takes its incident edges
// and, on a mind graph, its descendants with it.
func (g *Graph) RemoveItem(id string) error {
	kind, ok := g.ItemType(id)
	if !ok {
		return fmt.Errorf("remove %q: %w", id, domain.ErrItemNotFound)
	}
	if kind == domain.ItemTypeEdge {
		g.drop(id, domain.ItemTypeEdge)
		g.changed()
		return nil
	}

	for _, child := range g.Children(id) {
		if err := g.RemoveItem(child.ID); err != nil {
			return err
		}
	}
	for _, eid := range slices.Clone(g.order) {
		if e, isEdge := g.edges[eid]; isEdge && e.Touches(id) {
			g.drop(eid, domain.ItemTypeEdge)
		}
	}
	g.drop(id, domain.ItemTypeNode)
	g.changed()
	return nil
}

func (g *Graph) drop(id string, kind domain.ItemType) {
	delete(g.nodes, id)
	delete(g.edges, id)
	delete(g.states, id)
	delete(g.anchor, id)
	g.order = slices.DeleteFunc(g.order, func(o string) bool { return o == id })
	g.Emit(domain.Event{Type: domain.EventAfterRemoveItem, ItemID: id, ItemType: kind})
}

// UpdateItem applies patch to the item. The id itself cannot be patched.
func (g *Graph) UpdateItem(id string, patch domain.Patch) error {
	if n, ok := g.nodes[id]; ok {
		next, err := domain.ApplyPatch(*n, patch)
		if err != nil {
			return fmt.Errorf("update node %q: %w", id, err)
		}
		next.ID = id
		*n = next
		g.changed()
		g.Emit(domain.Event{Type: domain.EventAfterUpdateItem, ItemID: id, ItemType: domain.ItemTypeNode})
		return nil
	}
	if e, ok := g.edges[id]; ok {
		next, err := domain.ApplyPatch(*e, patch)
		if err != nil {
			return fmt.Errorf("update edge %q: %w", id, err)
		}
		next.ID = id
		if err := g.checkEndpoints(next); err != nil {
			return fmt.Errorf("update edge %q: %w", id, err)
		}
		*e = next
		g.changed()
		g.Emit(domain.Event{Type: domain.EventAfterUpdateItem, ItemID: id, ItemType: domain.ItemTypeEdge})
		return nil
	}
	return fmt.Errorf("update %q: %w", id, domain.ErrItemNotFound)
}

func (g *Graph) FindNode(id string) (domain.NodeModel, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return domain.NodeModel{}, false
	}
	return n.Clone(), true
}

func (g *Graph) FindEdge(id string) (domain.EdgeModel, bool) {
	e, ok := g.edges[id]
	if !ok {
		return domain.EdgeModel{}, false
	}
	return e.Clone(), true
}

func (g *Graph) ItemType(id string) (domain.ItemType, bool) {
	if _, ok := g.nodes[id]; ok {
		return domain.ItemTypeNode, true
	}
	if _, ok := g.edges[id]; ok {
		return domain.ItemTypeEdge, true
	}
	return "", false
}

func (g *Graph) Nodes() []domain.NodeModel {
	return g.filterNodes(func(*domain.NodeModel) bool { return true })
}

func (g *Graph) Edges() []domain.EdgeModel {
	return g.filterEdges(func(*domain.EdgeModel) bool { return true })
}

func (g *Graph) InEdges(nodeID string) []domain.EdgeModel {
	return g.filterEdges(func(e *domain.EdgeModel) bool { return e.Target.Node == nodeID })
}

func (g *Graph) OutEdges(nodeID string) []domain.EdgeModel {
	return g.filterEdges(func(e *domain.EdgeModel) bool { return e.Source.Node == nodeID })
}

func (g *Graph) Children(nodeID string) []domain.NodeModel {
	return g.filterNodes(func(n *domain.NodeModel) bool { return n.Parent == nodeID && nodeID != "" })
}

func (g *Graph) filterNodes(keep func(*domain.NodeModel) bool) []domain.NodeModel {
	out := []domain.NodeModel{}
	for _, id := range g.order {
		if n, ok := g.nodes[id]; ok && keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (g *Graph) filterEdges(keep func(*domain.EdgeModel) bool) []domain.EdgeModel {
	out := []domain.EdgeModel{}
	for _, id := range g.order {
		if e, ok := g.edges[id]; ok && keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// --- z-order and visibility ---

func (g *Graph) ToFront(id string) {
	if !g.reorder(id) {
		return
	}
	g.order = append(g.order, id)
	g.changed()
}

func (g *Graph) ToBack(id string) {
	if !g.reorder(id) {
		return
	}
	g.order = append([]string{id}, g.order...)
	g.changed()
}

func (g *Graph) reorder(id string) bool {
	if _, ok := g.ItemType(id); !ok {
		return false
	}
	g.order = slices.DeleteFunc(g.order, func(o string) bool { return o == id })
	return true
}

// SetVisible shows or hides an item. It emits no per-item event; callers
// toggling many items emit one aggregate notification themselves.
func (g *Graph) SetVisible(id string, visible bool) {
	if n, ok := g.nodes[id]; ok {
		n.Hidden = !visible
	} else if e, ok := g.edges[id]; ok {
		e.Hidden = !visible
	} else {
		return
	}
	g.changed()
}

// --- selection ---

func (g *Graph) SetItemState(id string, state domain.ItemState, on bool) {
	if _, ok := g.ItemType(id); !ok {
		return
	}
	set, ok := g.states[id]
	if !ok {
		set = make(map[domain.ItemState]bool)
		g.states[id] = set
	}
	if on {
		set[state] = true
	} else {
		delete(set, state)
	}
	g.changed()
}

func (g *Graph) HasState(id string, state domain.ItemState) bool {
	return g.states[id][state]
}

func (g *Graph) FindAllByState(kind domain.ItemType, state domain.ItemState) []string {
	var out []string
	for _, id := range g.order {
		if t, _ := g.ItemType(id); t == kind && g.states[id][state] {
			out = append(out, id)
		}
	}
	return out
}

// ClearItemStates clears the given states, or every state when none is given.
func (g *Graph) ClearItemStates(id string, states ...domain.ItemState) {
	set, ok := g.states[id]
	if !ok {
		return
	}
	if len(states) == 0 {
		delete(g.states, id)
	} else {
		for _, s := range states {
			delete(set, s)
		}
	}
	g.changed()
}

// --- anchors ---

func (g *Graph) AnchorCount(nodeID string) int {
	n, ok := g.nodes[nodeID]
	if !ok {
		return 0
	}
	return n.AnchorCount()
}

// SetAnchorStates replaces the anchor annotations of a node; nil clears them.
func (g *Graph) SetAnchorStates(nodeID string, states []domain.AnchorPointState) {
	if _, ok := g.nodes[nodeID]; !ok {
		return
	}
	if len(states) == 0 {
		delete(g.anchor, nodeID)
		return
	}
	g.anchor[nodeID] = slices.Clone(states)
}

func (g *Graph) AnchorState(nodeID string, index int) domain.AnchorPointState {
	states := g.anchor[nodeID]
	if index < 0 || index >= len(states) {
		return domain.AnchorDefault
	}
	return states[index]
}

// --- events ---

func (g *Graph) On(t domain.EventType, h ports.Handler) func() {
	g.nextSub++
	sub := &subscription{id: g.nextSub, fn: h}
	g.handlers[t] = append(g.handlers[t], sub)
	return func() {
		g.handlers[t] = slices.DeleteFunc(g.handlers[t], func(s *subscription) bool { return s.id == sub.id })
	}
}

func (g *Graph) Emit(e domain.Event) {
	for _, sub := range slices.Clone(g.handlers[e.Type]) {
		sub.fn(e)
	}
}

// --- viewport ---

func (g *Graph) Zoom() float64    { return g.zoom }
func (g *Graph) MinZoom() float64 { return g.minZoom }
func (g *Graph) MaxZoom() float64 { return g.maxZoom }

func (g *Graph) Size() (float64, float64) { return g.width, g.height }

// ZoomTo sets the zoom ratio, clamped to the zoom limits, keeping the screen
// point center fixed.
func (g *Graph) ZoomTo(ratio float64, center domain.Point) {
	ratio = math.Min(math.Max(ratio, g.minZoom), g.maxZoom)
	scale := ratio / g.zoom
	g.tx = center.X - (center.X-g.tx)*scale
	g.ty = center.Y - (center.Y-g.ty)*scale
	g.zoom = ratio
	g.viewChanged()
}

func (g *Graph) Translate(dx, dy float64) {
	g.tx += dx
	g.ty += dy
	g.viewChanged()
}

// FitView fits the bounding box of the visible nodes into the surface.
func (g *Graph) FitView(padding float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, id := range g.order {
		n, ok := g.nodes[id]
		if !ok || n.Hidden {
			continue
		}
		minX = math.Min(minX, n.X-n.Width/2)
		minY = math.Min(minY, n.Y-n.Height/2)
		maxX = math.Max(maxX, n.X+n.Width/2)
		maxY = math.Max(maxY, n.Y+n.Height/2)
	}
	if math.IsInf(minX, 1) {
		return
	}
	bw := math.Max(maxX-minX, 1)
	bh := math.Max(maxY-minY, 1)
	ratio := math.Min((g.width-2*padding)/bw, (g.height-2*padding)/bh)
	ratio = math.Min(math.Max(ratio, g.minZoom), g.maxZoom)

	g.zoom = ratio
	g.tx = g.width/2 - (minX+bw/2)*ratio
	g.ty = g.height/2 - (minY+bh/2)*ratio
	g.viewChanged()
}

func (g *Graph) View() domain.Viewport {
	return domain.Viewport{Zoom: g.zoom, X: g.tx, Y: g.ty}
}

func (g *Graph) SetView(v domain.Viewport) {
	if v.Zoom > 0 {
		g.zoom = v.Zoom
	}
	g.tx, g.ty = v.X, v.Y
	g.viewChanged()
}

func (g *Graph) viewChanged() {
	g.changed()
	g.Emit(domain.Event{Type: domain.EventViewportChange})
}

// Layout records a layout pass. The arena keeps positions as given.
func (g *Graph) Layout() {
	g.layouts++
	g.changed()
}

// Layouts returns the number of layout passes requested so far.
func (g *Graph) Layouts() int { return g.layouts }

// --- painting ---

func (g *Graph) AutoPaint() bool      { return g.autoPaint }
func (g *Graph) SetAutoPaint(on bool) { g.autoPaint = on }

// Paint forces one repaint.
func (g *Graph) Paint() { g.paints++ }

// Paints returns the number of repaints so far.
func (g *Graph) Paints() int { return g.paints }

func (g *Graph) changed() {
	if g.autoPaint {
		g.paints++
	}
}
