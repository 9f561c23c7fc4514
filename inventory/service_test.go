package inventory

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/resilience"
	"github.com/Syafiq-lab/library-management-be/userclient"
)

type fakeUsers struct {
	users map[uint]*userclient.User
	err   error
	calls int
}

func (f *fakeUsers) GetUser(_ context.Context, id uint) (*userclient.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", "")
	}
	return u, nil
}

func newTestBreaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "user-service",
		MaxFailures: 3,
		Cooldown:    time.Minute,
	})
}

func newTestInventory(users *fakeUsers) (*Service, *MemoryStore, *resilience.CircuitBreaker) {
	store := NewMemoryStore()
	breaker := newTestBreaker()
	return NewService(store, users, breaker, logger.NewDefault("test")), store, breaker
}

func TestCreateValidatesOwner(t *testing.T) {
	users := &fakeUsers{users: map[uint]*userclient.User{
		1: {ID: 1, Email: "alice@example.com", Active: true},
	}}
	svc, store, _ := newTestInventory(users)

	item := &Item{Name: "Widget", SKU: "W-1", Quantity: 3, OwnerID: 1}
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.FindByID(context.Background(), item.ID); err != nil {
		t.Errorf("item not persisted: %v", err)
	}
}

func TestCreateRejectsUnknownOwner(t *testing.T) {
	users := &fakeUsers{users: map[uint]*userclient.User{}}
	svc, store, breaker := newTestInventory(users)

	err := svc.Create(context.Background(), &Item{Name: "Widget", SKU: "W-2", OwnerID: 99})
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Fatalf("Create = %v, want INVALID_INPUT", err)
	}
	if list, _ := store.List(context.Background()); len(list) != 0 {
		t.Error("item persisted despite unknown owner")
	}
	// A missing owner is a caller error, not a dependency failure.
	if breaker.State() != resilience.StateClosed {
		t.Error("not-found tripped the breaker")
	}
}

func TestCreateRejectsInactiveOwner(t *testing.T) {
	users := &fakeUsers{users: map[uint]*userclient.User{
		2: {ID: 2, Email: "bob@example.com", Active: false},
	}}
	svc, _, _ := newTestInventory(users)

	err := svc.Create(context.Background(), &Item{Name: "Widget", SKU: "W-3", OwnerID: 2})
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Errorf("Create = %v, want INVALID_INPUT", err)
	}
}

func TestCreateRefusedWhenUserServiceDown(t *testing.T) {
	users := &fakeUsers{err: apperrors.DependencyUnavailable("user service")}
	svc, store, _ := newTestInventory(users)

	err := svc.Create(context.Background(), &Item{Name: "Widget", SKU: "W-4", OwnerID: 1})
	if apperrors.CodeOf(err) != apperrors.ErrCodeDependencyUnavailable {
		t.Fatalf("Create = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
	if list, _ := store.List(context.Background()); len(list) != 0 {
		t.Error("write accepted without owner validation")
	}
}

func TestBreakerOpensAndShortCircuits(t *testing.T) {
	users := &fakeUsers{err: apperrors.DependencyUnavailable("user service")}
	svc, _, breaker := newTestInventory(users)

	for i := 0; i < 3; i++ {
		svc.Create(context.Background(), &Item{Name: "Widget", SKU: "W-5", OwnerID: 1})
	}
	if breaker.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %v, want open", breaker.State())
	}

	callsBefore := users.calls
	err := svc.Create(context.Background(), &Item{Name: "Widget", SKU: "W-6", OwnerID: 1})
	if apperrors.CodeOf(err) != apperrors.ErrCodeDependencyUnavailable {
		t.Errorf("Create with open breaker = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
	if users.calls != callsBefore {
		t.Error("open breaker still called the user service")
	}
}

func TestUpdateValidatesOnlyOwnerChanges(t *testing.T) {
	users := &fakeUsers{users: map[uint]*userclient.User{
		1: {ID: 1, Active: true},
		2: {ID: 2, Active: true},
	}}
	svc, _, _ := newTestInventory(users)

	item := &Item{Name: "Widget", SKU: "W-7", OwnerID: 1}
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	callsAfterCreate := users.calls

	item.Quantity = 5
	if err := svc.Update(context.Background(), item, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if users.calls != callsAfterCreate {
		t.Error("quantity-only update called the user service")
	}

	item.OwnerID = 2
	if err := svc.Update(context.Background(), item, true); err != nil {
		t.Fatalf("Update with owner change: %v", err)
	}
	if users.calls != callsAfterCreate+1 {
		t.Error("owner change did not validate the new owner")
	}
}

func TestGetAndDeleteNotFound(t *testing.T) {
	users := &fakeUsers{users: map[uint]*userclient.User{}}
	svc, _, _ := newTestInventory(users)

	if _, err := svc.Get(context.Background(), 404); apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("Get = %v, want NOT_FOUND", err)
	}
	if err := svc.Delete(context.Background(), 404); apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("Delete = %v, want NOT_FOUND", err)
	}
}
