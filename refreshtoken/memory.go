package refreshtoken

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It mirrors the
// GormStore semantics exactly and backs unit tests and single-process
// deployments.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]*Record
	now  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption configures the store.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock, for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty in-memory refresh-token store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		recs: make(map[string]*Record),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	cp := *rec
	s.recs[rec.TokenValue] = &cp
	return nil
}

func (s *MemoryStore) ConsumeForRotation(_ context.Context, tokenValue string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[tokenValue]
	if !ok || rec.Revoked {
		return nil, ErrNotFoundOrRevoked
	}
	if rec.ExpiresAt.Before(s.now()) {
		return nil, ErrExpired
	}

	// Check-and-set under the same lock: only one concurrent caller can
	// observe revoked=false.
	rec.Revoked = true
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[tokenValue]; ok {
		rec.Revoked = true
	}
	return nil
}
