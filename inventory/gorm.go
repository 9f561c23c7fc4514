package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormStore implements Store on a GORM database.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates an item store on the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, item *Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("inventory: create: %w", err)
	}
	return nil
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inventory: find by id: %w", err)
	}
	return &item, nil
}

func (s *GormStore) List(ctx context.Context) ([]Item, error) {
	var list []Item
	if err := s.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	return list, nil
}

func (s *GormStore) Update(ctx context.Context, item *Item) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("inventory: update: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Item{}, id)
	if res.Error != nil {
		return fmt.Errorf("inventory: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
