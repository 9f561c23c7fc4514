package users

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func forEachStore(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("gorm", func(t *testing.T) {
		// A named shared-cache database keeps every pooled connection on
		// the same in-memory instance, isolated per test.
		dsn := fmt.Sprintf("file:users_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		if err := db.AutoMigrate(&User{}); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		fn(t, NewGormStore(db))
	})
}

func TestCreateAndFind(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		u := &User{Email: "alice@example.com", FullName: "Alice", Role: DefaultRole, Active: true}
		if err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if u.ID == 0 {
			t.Fatal("Create did not assign an id")
		}

		byID, err := store.FindByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if byID.Email != "alice@example.com" {
			t.Errorf("email = %q", byID.Email)
		}

		byEmail, err := store.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("FindByEmail: %v", err)
		}
		if byEmail.ID != u.ID {
			t.Errorf("id = %d, want %d", byEmail.ID, u.ID)
		}
	})
}

func TestFindNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		if _, err := store.FindByID(ctx, 404); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID = %v, want ErrNotFound", err)
		}
		if _, err := store.FindByEmail(ctx, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByEmail = %v, want ErrNotFound", err)
		}
	})
}

func TestExistsByEmail(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		if err := store.Create(ctx, &User{Email: "bob@example.com", FullName: "Bob"}); err != nil {
			t.Fatalf("Create: %v", err)
		}

		exists, err := store.ExistsByEmail(ctx, "bob@example.com")
		if err != nil || !exists {
			t.Errorf("ExistsByEmail(bob) = (%v, %v), want (true, nil)", exists, err)
		}
		exists, err = store.ExistsByEmail(ctx, "nobody@example.com")
		if err != nil || exists {
			t.Errorf("ExistsByEmail(nobody) = (%v, %v), want (false, nil)", exists, err)
		}
	})
}

func TestUpdateAndDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		u := &User{Email: "carol@example.com", FullName: "Carol", Active: true}
		if err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}

		u.FullName = "Carol Updated"
		u.Active = false
		if err := store.Update(ctx, u); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, _ := store.FindByID(ctx, u.ID)
		if got.FullName != "Carol Updated" || got.Active {
			t.Errorf("after update: %+v", got)
		}

		if err := store.Delete(ctx, u.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := store.FindByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID after delete = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete = %v, want ErrNotFound", err)
		}
	})
}

func TestListOrdered(t *testing.T) {
	forEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			if err := store.Create(ctx, &User{Email: email}); err != nil {
				t.Fatalf("Create(%s): %v", email, err)
			}
		}
		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("len = %d, want 3", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].ID >= list[i].ID {
				t.Errorf("list not ordered by id: %v", list)
			}
		}
	})
}
