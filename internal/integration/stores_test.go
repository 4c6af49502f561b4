package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"task_manager/internal/domain"
	"task_manager/internal/service"

	"github.com/google/uuid"
)

// runStoreSuite checks the uniqueness and scoping rules every backend must honour.
func runStoreSuite(t *testing.T, users service.UserStore, tasks service.TaskStore) {
	ctx := context.Background()

	newUser := func(t *testing.T) *domain.User {
		t.Helper()
		u := &domain.User{Name: "it", Email: "it-" + uuid.NewString() + "@example.com", PasswordHash: "x"}
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		if u.ID == "" || u.CreatedAt.IsZero() {
			t.Fatalf("user not populated: %+v", u)
		}
		return u
	}

	t.Run("duplicate email", func(t *testing.T) {
		u := newUser(t)
		dup := &domain.User{Name: "other", Email: u.Email, PasswordHash: "y"}
		if err := users.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("err = %v; want ErrDuplicateEmail", err)
		}

		got, err := users.GetByEmail(ctx, u.Email)
		if err != nil || got.ID != u.ID {
			t.Fatalf("GetByEmail = %+v, %v", got, err)
		}
		if _, err := users.GetByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("GetByID(missing) err = %v", err)
		}
	})

	t.Run("concurrent duplicate email", func(t *testing.T) {
		email := "race-" + uuid.NewString() + "@example.com"
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = users.Create(ctx, &domain.User{Name: "r", Email: email, PasswordHash: "x"})
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case !errors.Is(err, domain.ErrDuplicateEmail):
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if ok != 1 {
			t.Fatalf("%d creates succeeded; want 1", ok)
		}
	})

	t.Run("tasks scoped by owner", func(t *testing.T) {
		a, b := newUser(t), newUser(t)

		for _, title := range []string{"one", "two", "three"} {
			task := &domain.Task{Title: title, Description: "d", Priority: domain.PriorityLow, Status: domain.StatusPending, OwnerUserID: a.ID, OwnerEmail: a.Email}
			if err := tasks.Create(ctx, task); err != nil {
				t.Fatalf("create %s: %v", title, err)
			}
		}
		dup := &domain.Task{Title: "one", Description: "d", Priority: domain.PriorityLow, Status: domain.StatusPending, OwnerUserID: a.ID, OwnerEmail: a.Email}
		if err := tasks.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateTitle) {
			t.Fatalf("duplicate create err = %v", err)
		}
		other := &domain.Task{Title: "one", Description: "d", Priority: domain.PriorityHigh, Status: domain.StatusPending, OwnerUserID: b.ID, OwnerEmail: b.Email}
		if err := tasks.Create(ctx, other); err != nil {
			t.Fatalf("same title other owner: %v", err)
		}

		list, err := tasks.ListByOwner(ctx, a.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || list[0].Title != "one" || list[2].Title != "three" {
			t.Fatalf("list = %+v", list)
		}

		if _, err := tasks.GetByTitle(ctx, b.ID, "two"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("cross-owner get err = %v", err)
		}

		upd := &domain.Task{Title: "two", Description: "x", Priority: domain.PriorityMedium, Status: domain.StatusCompleted}
		if err := tasks.Update(ctx, a.ID, "one", upd); !errors.Is(err, domain.ErrDuplicateTitle) {
			t.Fatalf("rename collision err = %v", err)
		}
		upd.Title = "uno"
		if err := tasks.Update(ctx, a.ID, "one", upd); err != nil {
			t.Fatalf("update: %v", err)
		}
		if upd.OwnerUserID != a.ID || upd.Status != domain.StatusCompleted || upd.ID == "" {
			t.Fatalf("updated record = %+v", upd)
		}
		if err := tasks.Update(ctx, a.ID, "missing", upd); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("update missing err = %v", err)
		}

		if err := tasks.DeleteByTitle(ctx, a.ID, "nope"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("delete missing err = %v", err)
		}
		if err := tasks.DeleteByTitle(ctx, a.ID, "uno"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		exists, err := tasks.ExistsByTitle(ctx, a.ID, "uno")
		if err != nil || exists {
			t.Fatalf("exists after delete = %v, %v", exists, err)
		}
		bList, _ := tasks.ListByOwner(ctx, b.ID)
		if len(bList) != 1 {
			t.Fatalf("other owner affected: %+v", bList)
		}
	})
}
