package inventory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*Item
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory item store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[uint]*Item)}
}

func (s *MemoryStore) Create(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID
	s.nextID++
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	cp := *item
	s.byID[item.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uint) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Item, 0, len(s.byID))
	for _, item := range s.byID {
		list = append(list, *item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryStore) Update(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[item.ID]; !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now()
	cp := *item
	s.byID[item.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
