package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

type memoryCollection struct {
	order []string
	docs  map[string]*Document
}

// MemoryStore keeps documents in process memory. Insertion order is the native list order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Scope]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Scope]*memoryCollection)}
}

func (s *MemoryStore) collection(scope Scope, create bool) *memoryCollection {
	c, ok := s.collections[scope]
	if !ok && create {
		c = &memoryCollection{docs: make(map[string]*Document)}
		s.collections[scope] = c
	}
	return c
}

func copyDocument(doc *Document) *Document {
	return &Document{ID: doc.ID, Version: doc.Version, Fields: doc.Fields.Clone()}
}

func (s *MemoryStore) Get(ctx context.Context, scope Scope, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(scope, false)
	if c == nil {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(scope, false)
	if c == nil {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, *copyDocument(c.docs[id]))
	}
	return docs, nil
}

func (s *MemoryStore) Add(ctx context.Context, scope Scope, fields Fields) (*Document, error) {
	return s.Set(ctx, scope, uuid.New().String(), fields)
}

func (s *MemoryStore) Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(scope, true)
	doc := &Document{ID: id, Version: 1, Fields: fields.Clone()}
	if prev, ok := c.docs[id]; ok {
		doc.Version = prev.Version + 1
	} else {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
	return copyDocument(doc), nil
}

func (s *MemoryStore) Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(scope, false)
	if c == nil {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if expectedVersion != AnyVersion && doc.Version != expectedVersion {
		return nil, ErrConflict
	}
	doc.Fields.Merge(fields)
	doc.Version++
	return copyDocument(doc), nil
}

func (s *MemoryStore) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(scope, false)
	if c == nil {
		return false, nil
	}
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
