package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/mohae/deepcopy"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Document),
	}
}

// Save keeps a deep copy of the document.
func (s *Store) Save(ctx context.Context, id string, doc *domain.Document) error {
	copied := deepcopy.Copy(doc).(*domain.Document)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load returns a deep copy so callers can't mutate the stored document.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return deepcopy.Copy(doc).(*domain.Document), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored document IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
