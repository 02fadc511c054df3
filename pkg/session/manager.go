package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed document lock survives a
// crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps one editor per open document and serializes access to it.
// Locks are reference counted so ids nobody waits on are dropped again.
type Manager struct {
	store ports.DocumentStore

	mu      sync.Mutex
	locks   map[string]*lockEntry
	editors map[string]*easel.Editor
	subs    map[string]map[int]chan *domain.DocumentDiff
	nextSub int

	editorOpts []easel.Option
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across hosts sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions sets the options every opened editor is built with.
func WithEditorOptions(opts ...easel.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a session manager persisting to store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*easel.Editor),
		subs:    make(map[string]map[int]chan *domain.DocumentDiff),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller locks entry.mu and calls release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"document", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// WithEditor runs fn against the editor of the document, opening it from the
// store (or empty) on first use. When fn changed the document the new
// snapshot is saved and the diff is published to subscribers, even if fn
// returned an error after mutating.
func (m *Manager) WithEditor(ctx context.Context, id string, fn func(context.Context, *easel.Editor) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		ed, err := m.open(ctx, id)
		if err != nil {
			return err
		}

		before := ed.Snapshot()
		fnErr := fn(ctx, ed)
		after := ed.Snapshot()

		diff := domain.DiffDocuments(before, after)
		if diff.Empty() && before.Kind == after.Kind {
			return fnErr
		}
		if err := m.store.Save(ctx, id, after); err != nil {
			return errors.Join(fnErr, fmt.Errorf("failed to persist document %q: %w", id, err))
		}
		m.publish(id, diff)
		return fnErr
	})
}

// open returns the cached editor or builds one. The caller holds the lock for id.
func (m *Manager) open(ctx context.Context, id string) (*easel.Editor, error) {
	m.mu.Lock()
	ed, ok := m.editors[id]
	m.mu.Unlock()
	if ok {
		return ed, nil
	}

	opts := append([]easel.Option{easel.WithLogger(m.logger)}, m.editorOpts...)
	opts = append(opts, easel.WithDocumentID(id))
	ed, err := easel.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %q: %w", id, err)
	}

	doc, err := m.store.Load(ctx, id)
	switch {
	case err == nil:
		if err := ed.Load(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to open document %q: %w", id, err)
		}
	case errors.Is(err, domain.ErrDocumentNotFound):
		m.logger.DebugContext(ctx, "starting empty document", "document", id)
	default:
		return nil, fmt.Errorf("failed to load document %q: %w", id, err)
	}

	m.mu.Lock()
	m.editors[id] = ed
	m.mu.Unlock()
	return ed, nil
}

// Snapshot returns the current document, opening it if needed.
func (m *Manager) Snapshot(ctx context.Context, id string) (*domain.Document, error) {
	var doc *domain.Document
	err := m.WithEditor(ctx, id, func(_ context.Context, ed *easel.Editor) error {
		doc = ed.Snapshot()
		return nil
	})
	return doc, err
}

// Close drops the cached editor of a document. Its history is lost; the
// stored snapshot is kept.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(context.Context) error {
		m.mu.Lock()
		delete(m.editors, id)
		m.mu.Unlock()
		return nil
	})
}

// Delete closes the document and removes it from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.editors, id)
		m.mu.Unlock()
		return m.store.Delete(ctx, id)
	})
}

// List returns stored document ids.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// Subscribe returns a channel receiving the diff of every persisted change
// to the document, and a func to stop. Slow subscribers miss diffs rather
// than block writers.
func (m *Manager) Subscribe(id string) (<-chan *domain.DocumentDiff, func()) {
	ch := make(chan *domain.DocumentDiff, 16)

	m.mu.Lock()
	m.nextSub++
	key := m.nextSub
	if m.subs[id] == nil {
		m.subs[id] = make(map[int]chan *domain.DocumentDiff)
	}
	m.subs[id][key] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[id], key)
			if len(m.subs[id]) == 0 {
				delete(m.subs, id)
			}
			close(ch)
		})
	}
}

func (m *Manager) publish(id string, diff *domain.DocumentDiff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[id] {
		select {
		case ch <- diff:
		default:
			m.logger.Warn("dropping document diff for slow subscriber", "document", id)
		}
	}
}
