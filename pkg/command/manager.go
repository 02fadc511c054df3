package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/mohae/deepcopy"
)

// Manager owns the command registry and the undo/redo history of one editor
// session. History is a queue of executed undoable commands plus a cursor:
// entries before the cursor are undoable, entries from it on are redoable.
type Manager struct {
	mu sync.Mutex

	templates map[string]Template
	names     []string
	gates     map[string][]func(*Env) bool

	queue []entry
	index int

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	docID  string
}

type entry struct {
	name string
	cmd  Command
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithDocumentID tags hook events with the document the history belongs to.
func WithDocumentID(id string) Option {
	return func(m *Manager) {
		m.docID = id
	}
}

// NewManager creates a manager with an empty registry. Undo and redo are
// always registered; call RegisterDefaults for the rest of the built-ins.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		templates: make(map[string]Template),
		gates:     make(map[string][]func(*Env) bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	m.Register(undoTemplate(m))
	m.Register(redoTemplate(m))
	return m
}

// Register adds or replaces a template. Replacing keeps the original
// position in shortcut matching order.
func (m *Manager) Register(t Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.Name]; !ok {
		m.names = append(m.names, t.Name)
	}
	m.templates[t.Name] = t
}

// InjectShouldExecute adds a host predicate to a registered command. The
// command runs only when its own guard and every injected predicate agree.
func (m *Manager) InjectShouldExecute(name string, pred func(*Env) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[name]; !ok {
		return domain.Reject(name, domain.ReasonUnknownCommand)
	}
	m.gates[name] = append(m.gates[name], pred)
	return nil
}

// Templates returns the registered templates in registration order.
func (m *Manager) Templates() []Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Template, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.templates[name])
	}
	return out
}

// CanExecute reports whether the named command, with default params, would
// pass its guards right now.
func (m *Manager) CanExecute(env *Env, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[name]
	if !ok {
		return false
	}
	return m.check(env, name, t.New()) == ""
}

func (m *Manager) check(env *Env, name string, cmd Command) domain.RejectReason {
	if reason := cmd.CanExecute(env); reason != "" {
		return reason
	}
	if !cmd.ShouldExecute(env) {
		return domain.ReasonGuard
	}
	for _, pred := range m.gates[name] {
		if !pred(env) {
			return domain.ReasonGuard
		}
	}
	return ""
}

// Execute runs the named command with optional parameter overrides.
//
// A refused command returns a *domain.RejectionError and leaves the graph,
// the history and the event bus untouched. An accepted command emits
// before_execute_command and after_execute_command around its effect, is
// painted exactly once, is pushed on the history when undoable (dropping any
// redoable tail) and ends with a graph_state_change event.
func (m *Manager) Execute(ctx context.Context, env *Env, name string, params map[string]any) error {
	start := time.Now()

	m.mu.Lock()
	reason, err := m.execute(env, name, params)
	event := &domain.CommandEvent{
		EventBase: domain.EventBase{Timestamp: start, DocumentID: m.docID},
		Command:   name,
		Reason:    reason,
		Index:     m.index,
		Length:    len(m.queue),
		Duration:  time.Since(start),
	}
	m.mu.Unlock()

	switch {
	case reason != "":
		m.logger.DebugContext(ctx, "command rejected", "command", name, "reason", reason)
		if m.hooks.OnCommandRejected != nil {
			m.hooks.OnCommandRejected(ctx, event)
		}
		return domain.Reject(name, reason)
	case err != nil:
		m.logger.ErrorContext(ctx, "command failed", "command", name, "error", err)
		return err
	}

	m.logger.DebugContext(ctx, "command executed", "command", name, "index", event.Index, "length", event.Length)
	if m.hooks.OnCommandExecuted != nil {
		m.hooks.OnCommandExecuted(ctx, event)
	}
	return nil
}

func (m *Manager) execute(env *Env, name string, params map[string]any) (domain.RejectReason, error) {
	t, ok := m.templates[name]
	if !ok {
		return domain.ReasonUnknownCommand, nil
	}

	cmd := t.New()
	var args any
	if p, ok := cmd.(Parameterized); ok {
		args = p.Params()
		if len(params) > 0 {
			// The instance owns its params; nothing the caller holds may reach history.
			own, _ := deepcopy.Copy(params).(map[string]any)
			if err := domain.Decode(own, args); err != nil {
				return "", fmt.Errorf("command %q: %w: %w", name, domain.ErrInvalidParams, err)
			}
		}
	}

	if reason := m.check(env, name, cmd); reason != "" {
		return reason, nil
	}
	if err := cmd.Init(env); err != nil {
		return "", fmt.Errorf("command %q: init: %w", name, err)
	}

	g := env.Graph
	g.Emit(domain.Event{Type: domain.EventBeforeExecuteCommand, Command: name, Params: args})
	if err := ExecuteBatch(g, func() error { return cmd.Execute(env) }); err != nil {
		return "", fmt.Errorf("command %q: %w", name, err)
	}
	g.Emit(domain.Event{Type: domain.EventAfterExecuteCommand, Command: name, Params: args})

	if cmd.CanUndo(env) {
		m.queue = append(m.queue[:m.index], entry{name: name, cmd: cmd})
		m.index = len(m.queue)
	}

	g.Emit(domain.Event{Type: domain.EventGraphStateChange, GraphState: GraphState(g)})
	return "", nil
}

// History returns the number of recorded commands and the cursor.
func (m *Manager) History() (length, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue), m.index
}

// Entries returns the names of the recorded commands, oldest first.
func (m *Manager) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queue))
	for i, e := range m.queue {
		out[i] = e.name
	}
	return out
}

// Clear drops the whole history.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.index = 0
}
