package refreshtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormStore implements Store on a GORM database.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// GormOption configures the store.
type GormOption func(*GormStore)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) GormOption {
	return func(s *GormStore) { s.now = now }
}

// NewGormStore creates a refresh-token store on the given database handle.
func NewGormStore(db *gorm.DB, opts ...GormOption) *GormStore {
	s := &GormStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) Save(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("refreshtoken: save: %w", err)
	}
	return nil
}

func (s *GormStore) ConsumeForRotation(ctx context.Context, tokenValue string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("token_value = ? AND revoked = ?", tokenValue, false).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFoundOrRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("refreshtoken: lookup: %w", err)
	}

	if rec.ExpiresAt.Before(s.now()) {
		// Expired records are rejected without revoking them.
		return nil, ErrExpired
	}

	// Single conditional update: the revoked=false predicate is the
	// compare-and-swap. Under two concurrent rotations of the same value,
	// exactly one update reports an affected row.
	res := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("token_value = ? AND revoked = ?", tokenValue, false).
		Update("revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("refreshtoken: revoke: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFoundOrRevoked
	}

	rec.Revoked = true
	return &rec, nil
}

func (s *GormStore) Revoke(ctx context.Context, tokenValue string) error {
	res := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("token_value = ? AND revoked = ?", tokenValue, false).
		Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("refreshtoken: revoke: %w", res.Error)
	}
	// Zero affected rows means absent or already revoked; logout treats
	// that as success.
	return nil
}
