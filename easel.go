package easel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/gesture"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/topology"
	"github.com/google/uuid"
)

// SurfaceFactory builds the graph surface an editor draws on.
type SurfaceFactory func(kind domain.GraphKind) (ports.Graph, error)

// Editor is one editing session over a single document. It owns the graph
// surface, the command history, the clipboard and the edge gestures, and is
// passed explicitly to everything that acts on them.
//
// Editor is not safe for concurrent use; see package session for hosts that
// share documents across goroutines.
type Editor struct {
	id   string
	kind domain.GraphKind

	graph     ports.Graph
	commands  *command.Manager
	clipboard *domain.Clipboard
	env       *command.Env
	router    *gesture.Router
	gestures  *gesture.Context

	surface    SurfaceFactory
	gestureCfg gesture.Config
	templates  []command.Template
	newID      func() string

	minZoom, maxZoom float64
	width, height    float64

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithDocumentID names the document the session edits. Defaults to a random UUID.
func WithDocumentID(id string) Option {
	return func(e *Editor) {
		e.id = id
	}
}

// WithKind selects a flow or mind diagram (default: flow).
func WithKind(kind domain.GraphKind) Option {
	return func(e *Editor) {
		e.kind = kind
	}
}

// WithSurface injects the graph surface, bypassing the in-memory arena.
func WithSurface(f SurfaceFactory) Option {
	return func(e *Editor) {
		e.surface = f
	}
}

// WithZoomLimits bounds the zoom ratio of the default surface.
func WithZoomLimits(min, max float64) Option {
	return func(e *Editor) {
		e.minZoom, e.maxZoom = min, max
	}
}

// WithSize sets the render size of the default surface.
func WithSize(width, height float64) Option {
	return func(e *Editor) {
		e.width, e.height = width, height
	}
}

// WithLinkRules bounds edge degrees per node kind for both edge gestures.
func WithLinkRules(rules domain.LinkRules) Option {
	return func(e *Editor) {
		e.gestureCfg.LinkRules = rules
	}
}

// WithAllowMultiEdge lets more than one edge run between the same two nodes.
func WithAllowMultiEdge(allow bool) Option {
	return func(e *Editor) {
		e.gestureCfg.AllowMultiEdge = allow
	}
}

// WithEdgeKind sets the kind stamped on edges drawn with the add-edge gesture.
func WithEdgeKind(kind string) Option {
	return func(e *Editor) {
		e.gestureCfg.EdgeKind = kind
	}
}

// WithGestureConfig replaces the whole gesture configuration, including the
// anchor predicates and the custom edge validator.
func WithGestureConfig(cfg gesture.Config) Option {
	return func(e *Editor) {
		e.gestureCfg = cfg
	}
}

// WithTemplates registers extra command templates after the built-ins.
// A template named like a built-in replaces it.
func WithTemplates(templates ...command.Template) Option {
	return func(e *Editor) {
		e.templates = append(e.templates, templates...)
	}
}

// WithIDGenerator sets the id source for new items. Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls chain.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New creates an editor over an empty document.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{kind: domain.KindFlow}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	e.logger = e.logger.With("document", e.id)
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.gestureCfg.NewID == nil {
		e.gestureCfg.NewID = e.newID
	}
	if e.surface == nil {
		e.surface = e.memorySurface
	}

	g, err := e.build(e.kind)
	if err != nil {
		return nil, err
	}

	e.commands = command.NewManager(
		command.WithLogger(e.logger),
		command.WithLifecycleHooks(e.hooks),
		command.WithDocumentID(e.id),
	)
	command.RegisterDefaults(e.commands)
	for _, t := range e.templates {
		e.commands.Register(t)
	}
	e.clipboard = &domain.Clipboard{}
	e.attach(g)
	return e, nil
}

func (e *Editor) memorySurface(kind domain.GraphKind) (ports.Graph, error) {
	opts := []memory.Option{memory.WithKind(kind)}
	if e.maxZoom > 0 {
		opts = append(opts, memory.WithZoomLimits(e.minZoom, e.maxZoom))
	}
	if e.width > 0 && e.height > 0 {
		opts = append(opts, memory.WithSize(e.width, e.height))
	}
	return memory.NewGraph(opts...), nil
}

func (e *Editor) build(kind domain.GraphKind) (ports.Graph, error) {
	g, err := e.surface(kind)
	if err != nil {
		return nil, &domain.SurfaceError{Op: "create", Err: err}
	}
	if g == nil {
		return nil, &domain.SurfaceError{Op: "create", Err: fmt.Errorf("factory returned no graph")}
	}
	return g, nil
}

// attach points the session at g and starts the gestures over from idle.
func (e *Editor) attach(g ports.Graph) {
	e.graph = g
	e.kind = g.Kind()
	e.env = &command.Env{Graph: g, Clipboard: e.clipboard, NewID: e.newID}
	e.gestures = &gesture.Context{
		Graph:      g,
		Commands:   e,
		Logger:     e.logger,
		Hooks:      e.hooks,
		DocumentID: e.id,
	}
	e.router = gesture.NewRouter(
		gesture.NewAddEdge(e.gestureCfg),
		gesture.NewRepointEdge(e.gestureCfg),
	)
}

// ID returns the document id.
func (e *Editor) ID() string { return e.id }

// Graph returns the surface the editor draws on.
func (e *Editor) Graph() ports.Graph { return e.graph }

// Commands returns the command manager, for registering templates or
// injecting guards.
func (e *Editor) Commands() *command.Manager { return e.commands }

// Env returns the environment commands run against.
func (e *Editor) Env() *command.Env { return e.env }

// Gestures returns the routed gesture controllers.
func (e *Editor) Gestures() []gesture.Controller { return e.router.Controllers() }

// Rules returns the connection rules the gestures and Validate apply.
func (e *Editor) Rules() topology.Rules {
	return topology.Rules{LinkRules: e.gestureCfg.LinkRules, AllowMultiEdge: e.gestureCfg.AllowMultiEdge}
}

// Execute runs the named command. A refused command leaves the document
// untouched and returns a *domain.RejectionError.
func (e *Editor) Execute(ctx context.Context, name string, params map[string]any) error {
	return e.commands.Execute(ctx, e.env, name, params)
}

// CanExecute reports whether the named command would run now.
func (e *Editor) CanExecute(name string) bool {
	return e.commands.CanExecute(e.env, name)
}

// Undo steps the history back once.
func (e *Editor) Undo(ctx context.Context) error {
	return e.Execute(ctx, command.Undo, nil)
}

// Redo steps the history forward once.
func (e *Editor) Redo(ctx context.Context) error {
	return e.Execute(ctx, command.Redo, nil)
}

// History returns the history length and cursor.
func (e *Editor) History() (length, index int) {
	return e.commands.History()
}

// HandleKey runs the first command bound to the key. It reports whether one ran.
func (e *Editor) HandleKey(ctx context.Context, k command.KeyEvent) bool {
	return e.commands.Dispatch(ctx, e.env, k)
}

// HandlePointer feeds one pointer event to the edge gestures.
func (e *Editor) HandlePointer(ctx context.Context, p gesture.PointerEvent) {
	e.router.Handle(ctx, e.gestures, p)
}

// LeaveCanvas ends any gesture in flight as if the pointer left the canvas.
// Hosts call it when their pointer stream goes away mid-drag.
func (e *Editor) LeaveCanvas(ctx context.Context) {
	e.HandlePointer(ctx, gesture.PointerEvent{Type: gesture.EventCanvasLeave})
}

// Mode returns the current mode.
func (e *Editor) Mode() domain.GraphMode { return e.graph.Mode() }

// SetMode switches the editor mode.
func (e *Editor) SetMode(mode domain.GraphMode) {
	e.logger.Debug("mode changed", "mode", mode)
	e.graph.SetMode(mode)
}

// Snapshot returns the committed document. Gesture drafts are left out, and
// an edge lifted by a re-point gesture is reported as it was committed.
func (e *Editor) Snapshot() *domain.Document {
	doc := domain.NewDocument(e.id)
	doc.Kind = e.graph.Kind()
	for _, n := range e.graph.Nodes() {
		doc.Nodes = append(doc.Nodes, n.Clone())
	}
	lifted := e.lifted()
	for _, edge := range e.graph.Edges() {
		if edge.Draft {
			if original, ok := lifted[edge.ID]; ok {
				doc.Edges = append(doc.Edges, original)
			}
			continue
		}
		doc.Edges = append(doc.Edges, edge.Clone())
	}
	doc.Viewport = e.graph.View()
	return doc
}

// lifted collects the committed models of edges held by a gesture.
func (e *Editor) lifted() map[string]domain.EdgeModel {
	var out map[string]domain.EdgeModel
	for _, ctrl := range e.router.Controllers() {
		h, ok := ctrl.(interface {
			Original() (domain.EdgeModel, bool)
		})
		if !ok {
			continue
		}
		if original, ok := h.Original(); ok {
			if out == nil {
				out = make(map[string]domain.EdgeModel)
			}
			out[original.ID] = original
		}
	}
	return out
}

// Load replaces the document and clears the history. The document is built
// on a fresh surface and swapped in only once every item was accepted, so a
// failed load leaves the session as it was.
func (e *Editor) Load(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("load: %w", domain.ErrDocumentNotFound)
	}
	kind := doc.Kind
	if kind == "" {
		kind = domain.KindFlow
	}

	g, err := e.build(kind)
	if err != nil {
		return err
	}
	if err := populate(g, doc); err != nil {
		return fmt.Errorf("load %q: %w", doc.ID, err)
	}
	g.SetView(doc.Viewport)
	g.SetMode(e.graph.Mode())

	e.commands.Clear()
	e.attach(g)
	e.logger.InfoContext(ctx, "document loaded", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return nil
}

// Validate audits the whole document against the connection rules.
func (e *Editor) Validate() error {
	return topology.Audit(e.Snapshot(), e.Rules())
}

// populate adds parents before their children whatever the paint order.
func populate(g ports.Graph, doc *domain.Document) error {
	pending := doc.Nodes
	for len(pending) > 0 {
		var next []domain.NodeModel
		for _, n := range pending {
			if n.Parent != "" {
				if _, ok := g.FindNode(n.Parent); !ok {
					next = append(next, n)
					continue
				}
			}
			if err := g.AddNode(n); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			return fmt.Errorf("node %q: parent %q: %w", next[0].ID, next[0].Parent, domain.ErrItemNotFound)
		}
		pending = next
	}
	for _, edge := range doc.Edges {
		if err := g.AddEdge(edge); err != nil {
			return err
		}
	}
	return nil
}
