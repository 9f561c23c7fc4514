package inventory

import (
	"context"
	"errors"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/resilience"
	"github.com/Syafiq-lab/library-management-be/userclient"
)

// UserFetcher resolves users from the user service. Satisfied by
// *userclient.Client.
type UserFetcher interface {
	GetUser(ctx context.Context, id uint) (*userclient.User, error)
}

// Service implements inventory operations. Writes that reference an owner
// validate the owner against the user service through a circuit breaker;
// when the breaker is open or the peer is down the write is refused, never
// accepted unvalidated.
type Service struct {
	store   Store
	users   UserFetcher
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

// NewService wires the inventory service.
func NewService(store Store, users UserFetcher, breaker *resilience.CircuitBreaker, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		users:   users,
		breaker: breaker,
		log:     log.WithComponent("inventory"),
	}
}

// Create validates the owner and persists the item.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := s.validateOwner(ctx, item.OwnerID); err != nil {
		return err
	}
	if err := s.store.Create(ctx, item); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id uint) (*Item, error) {
	item, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.NotFound("inventory item", "")
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return item, nil
}

// List returns all items.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return list, nil
}

// Update persists changes to an existing item. An ownership change is
// validated like a create.
func (s *Service) Update(ctx context.Context, item *Item, ownerChanged bool) error {
	if ownerChanged {
		if err := s.validateOwner(ctx, item.OwnerID); err != nil {
			return err
		}
	}
	if err := s.store.Update(ctx, item); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperrors.NotFound("inventory item", "")
	}
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// validateOwner checks the owner exists and is active. An absent or
// inactive owner is a caller error and does not count against the breaker;
// only transport-level failures do.
func (s *Service) validateOwner(ctx context.Context, ownerID uint) error {
	var ownerErr error
	guard := resilience.NewGuard(
		s.breaker,
		func(ctx context.Context) (*userclient.User, error) {
			u, err := s.users.GetUser(ctx, ownerID)
			if err != nil {
				if apperrors.CodeOf(err) == apperrors.ErrCodeNotFound {
					ownerErr = apperrors.Validation("owner does not exist")
					return nil, nil
				}
				return nil, err
			}
			if !u.Active {
				ownerErr = apperrors.Validation("owner is not active")
			}
			return u, nil
		},
		func(ctx context.Context, err error) (*userclient.User, error) {
			s.log.WithContext(ctx).WithError(err).Warn("owner validation unavailable, refusing write")
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.DependencyUnavailable("user service").WithCause(err)
		},
	)
	if _, err := guard.Do(ctx); err != nil {
		return err
	}
	return ownerErr
}
