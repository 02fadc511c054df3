package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/testutils"
	"github.com/aretw0/easel/pkg/adapters/memory"
	"github.com/aretw0/easel/pkg/command"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	"github.com/aretw0/easel/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke races if locking is missing.
type slowStore struct {
	*memory.Store
	saves int
	mu    sync.Mutex
}

func (s *slowStore) Save(ctx context.Context, id string, doc *domain.Document) error {
	time.Sleep(time.Millisecond)
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.Store.Save(ctx, id, doc)
}

func addNode(id string, index int) func(context.Context, *easel.Editor) error {
	return func(ctx context.Context, ed *easel.Editor) error {
		return ed.Execute(ctx, command.Add, map[string]any{"node": testutils.Node(id, "X", index)})
	}
}

func TestManager_PersistsAfterMutation(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{Store: memory.NewStore()}
	m := session.NewManager(store)

	require.NoError(t, m.WithEditor(ctx, "doc", addNode("a", 0)))
	saved, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, saved.Nodes, 1)
	assert.Equal(t, "a", saved.Nodes[0].ID)

	// Reading does not write.
	_, err = m.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	// Undo is a mutation too.
	require.NoError(t, m.WithEditor(ctx, "doc", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Undo(ctx)
	}))
	saved, err = store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, saved.Nodes)
}

func TestManager_RejectedCommandIsNotSaved(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{Store: memory.NewStore()}
	m := session.NewManager(store)

	err := m.WithEditor(ctx, "doc", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Undo(ctx)
	})
	assert.Equal(t, domain.ReasonNothingToUndo, domain.ReasonOf(err))
	assert.Zero(t, store.saves)
}

func TestManager_OpensFromStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	doc := domain.NewDocument("doc")
	doc.Nodes = []domain.NodeModel{testutils.Node("a", "X", 0)}
	require.NoError(t, store.Save(ctx, "doc", doc))

	m := session.NewManager(store, session.WithEditorOptions(easel.WithAllowMultiEdge(true)))
	got, err := m.Snapshot(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)

	require.NoError(t, m.WithEditor(ctx, "doc", func(_ context.Context, ed *easel.Editor) error {
		assert.Equal(t, "doc", ed.ID())
		assert.True(t, ed.Rules().AllowMultiEdge)
		length, _ := ed.History()
		assert.Zero(t, length, "opening starts a fresh history")
		return nil
	}))
}

func TestManager_LoadFailure(t *testing.T) {
	boom := errors.New("store down")
	m := session.NewManager(failingStore{err: boom})

	err := m.WithEditor(context.Background(), "doc", addNode("a", 0))
	assert.ErrorIs(t, err, boom)
}

func TestManager_RejectedLoadIsNotSaved(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{Store: memory.NewStore()}
	m := session.NewManager(store)
	require.NoError(t, m.WithEditor(ctx, "doc", addNode("a", 0)))

	broken := domain.NewDocument("doc")
	broken.Nodes = []domain.NodeModel{testutils.Node("b", "X", 0)}
	broken.Edges = []domain.EdgeModel{{ID: "e", Source: domain.AtNode("b", 1), Target: domain.AtNode("ghost", 3)}}
	err := m.WithEditor(ctx, "doc", func(ctx context.Context, ed *easel.Editor) error {
		return ed.Load(ctx, broken)
	})
	require.ErrorIs(t, err, domain.ErrInvalidEndpoint)

	saved, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, saved.Nodes, 1)
	assert.Equal(t, "a", saved.Nodes[0].ID)
	assert.Equal(t, 1, store.saves)
}

type failingStore struct {
	ports.DocumentStore
	err error
}

func (s failingStore) Load(context.Context, string) (*domain.Document, error) { return nil, s.err }

func TestManager_SerializesEditors(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{Store: memory.NewStore()}
	m := session.NewManager(store)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.WithEditor(ctx, "doc", addNode(fmt.Sprintf("n%d", i), i)))
		}(i)
	}
	wg.Wait()

	doc, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 10, "no update was lost")
}

func TestManager_SubscribeReceivesDiffs(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.NewStore())

	diffs, stop := m.Subscribe("doc")
	require.NoError(t, m.WithEditor(ctx, "doc", addNode("a", 0)))

	select {
	case diff := <-diffs:
		assert.Equal(t, "doc", diff.DocumentID)
		assert.Equal(t, []string{"a"}, diff.Added)
	case <-time.After(time.Second):
		t.Fatal("no diff published")
	}

	stop()
	stop()
	_, open := <-diffs
	assert.False(t, open)
}

func TestManager_DeleteDropsEditor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := session.NewManager(store)
	require.NoError(t, m.WithEditor(ctx, "doc", addNode("a", 0)))

	require.NoError(t, m.Delete(ctx, "doc"))
	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	doc, err := m.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, doc.Nodes, "a deleted document reopens empty")
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	ttl   time.Duration
	fails bool
}

func (l *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fails {
		return nil, errors.New("held elsewhere")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.ttl = ttl
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLock(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{}
	m := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	require.NoError(t, m.WithEditor(ctx, "doc", addNode("a", 0)))
	assert.Equal(t, []string{"doc"}, locker.keys)
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.fails = true
	err := m.WithEditor(ctx, "doc", addNode("b", 1))
	assert.ErrorContains(t, err, "distributed lock")
}
