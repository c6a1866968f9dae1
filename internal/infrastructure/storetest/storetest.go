// Package storetest holds the behaviour every repository implementation must share.
// Each case works on a fresh user so suites can run against a shared database.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/google/uuid"
)

func newPlan(userID uuid.UUID, start, end string) *entity.MealPlan {
	now := time.Now().UTC()
	return &entity.MealPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "plan " + start,
		StartDate: start,
		EndDate:   end,
		Status:    entity.PlanStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newSlot(planID uuid.UUID, day int, meal entity.MealType) *entity.RecipeSlot {
	return &entity.RecipeSlot{
		ID:         uuid.New(),
		PlanID:     planID,
		RecipeID:   "recipe-" + uuid.NewString()[:8],
		RecipeName: "Recipe",
		DayIndex:   day,
		MealType:   meal,
		CreatedAt:  time.Now().UTC(),
	}
}

func boolPtr(b bool) *bool { return &b }

func mustCreate(t *testing.T, repo repository.PlanRepository, plans ...*entity.MealPlan) {
	t.Helper()
	for _, p := range plans {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("create %s: %v", p.Name, err)
		}
	}
}

func currentIDs(t *testing.T, repo repository.PlanRepository, userID uuid.UUID) []uuid.UUID {
	t.Helper()
	plans, err := repo.ListByUserID(context.Background(), userID, true)
	if err != nil {
		t.Fatal(err)
	}
	var ids []uuid.UUID
	for _, p := range plans {
		if p.IsCurrent {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// RunPlanRepositoryTests exercises a PlanRepository implementation
func RunPlanRepositoryTests(t *testing.T, repo repository.PlanRepository) {
	ctx := context.Background()

	t.Run("create and read back with slots", func(t *testing.T) {
		userID := uuid.New()
		plan := newPlan(userID, "2024-02-27", "2024-03-04")
		mustCreate(t, repo, plan)

		late := newSlot(plan.ID, 4, entity.MealTypeDinner)
		early := newSlot(plan.ID, 0, entity.MealTypeBreakfast)
		for _, s := range []*entity.RecipeSlot{late, early} {
			if err := repo.AddSlot(ctx, s); err != nil {
				t.Fatal(err)
			}
		}

		// Replays are no-ops.
		if err := repo.Create(ctx, plan); err != nil {
			t.Fatalf("replayed create: %v", err)
		}
		if err := repo.AddSlot(ctx, late); err != nil {
			t.Fatalf("replayed add slot: %v", err)
		}

		got, err := repo.GetByID(ctx, plan.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.StartDate != "2024-02-27" || got.EndDate != "2024-03-04" {
			t.Errorf("window = [%s, %s]", got.StartDate, got.EndDate)
		}
		if got.UserID != userID || got.Status != entity.PlanStatusActive || got.IsCurrent {
			t.Errorf("plan = %+v", got)
		}
		if len(got.Slots) != 2 {
			t.Fatalf("got %d slots, want 2", len(got.Slots))
		}
		if got.Slots[0].ID != early.ID || got.Slots[1].ID != late.ID {
			t.Error("slots not ordered by day index")
		}
		if got.Slots[1].MealType != entity.MealTypeDinner || got.Slots[1].RecipeID != late.RecipeID {
			t.Errorf("slot = %+v", got.Slots[1])
		}
	})

	t.Run("not found", func(t *testing.T) {
		plan := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		mustCreate(t, repo, plan)

		if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("GetByID unknown: %v", err)
		}
		if _, err := repo.GetByIDAndUserID(ctx, plan.ID, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("GetByIDAndUserID other user: %v", err)
		}
		if err := repo.Archive(ctx, uuid.New()); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("Archive unknown: %v", err)
		}
		if err := repo.AddSlot(ctx, newSlot(uuid.New(), 0, entity.MealTypeLunch)); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("AddSlot to unknown plan: %v", err)
		}
	})

	t.Run("at most one current plan", func(t *testing.T) {
		userID := uuid.New()
		a := newPlan(userID, "2024-01-01", "2024-01-07")
		b := newPlan(userID, "2024-01-08", "2024-01-14")
		mustCreate(t, repo, a, b)

		if err := repo.SetCurrent(ctx, a.ID); err != nil {
			t.Fatal(err)
		}
		if err := repo.SetCurrent(ctx, b.ID); !errors.Is(err, entity.ErrInvariantViolation) {
			t.Fatalf("second SetCurrent: %v, want ErrInvariantViolation", err)
		}

		if err := repo.ClearCurrent(ctx, userID, b.ID); err != nil {
			t.Fatal(err)
		}
		if ids := currentIDs(t, repo, userID); len(ids) != 0 {
			t.Fatalf("after clear: %v", ids)
		}
		if err := repo.SetCurrent(ctx, b.ID); err != nil {
			t.Fatal(err)
		}
		if ids := currentIDs(t, repo, userID); len(ids) != 1 || ids[0] != b.ID {
			t.Fatalf("current = %v, want [%s]", ids, b.ID)
		}

		// Clearing while keeping the current plan leaves it alone.
		if err := repo.ClearCurrent(ctx, userID, b.ID); err != nil {
			t.Fatal(err)
		}
		if ids := currentIDs(t, repo, userID); len(ids) != 1 {
			t.Fatalf("kept plan was cleared: %v", ids)
		}

		// Other users are independent.
		other := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		mustCreate(t, repo, other)
		if err := repo.SetCurrent(ctx, other.ID); err != nil {
			t.Fatalf("other user's SetCurrent: %v", err)
		}
	})

	t.Run("archive clears current and hides plan", func(t *testing.T) {
		userID := uuid.New()
		a := newPlan(userID, "2024-01-01", "2024-01-07")
		mustCreate(t, repo, a)
		if err := repo.SetCurrent(ctx, a.ID); err != nil {
			t.Fatal(err)
		}

		if err := repo.Archive(ctx, a.ID); err != nil {
			t.Fatal(err)
		}

		active, err := repo.ListByUserID(ctx, userID, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(active) != 0 {
			t.Errorf("archived plan listed as active")
		}

		all, err := repo.ListByUserID(ctx, userID, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 || all[0].Status != entity.PlanStatusArchived || all[0].IsCurrent {
			t.Errorf("archived plan = %+v", all)
		}

		if err := repo.SetCurrent(ctx, a.ID); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("SetCurrent on archived plan: %v, want ErrNotFound", err)
		}

		ids, err := repo.ListUserIDsWithActivePlans(ctx)
		if err != nil {
			t.Fatal(err)
		}
		for _, id := range ids {
			if id == userID {
				t.Error("user with only archived plans listed")
			}
		}
	})

	t.Run("list orders by start date with undated last", func(t *testing.T) {
		userID := uuid.New()
		undated := newPlan(userID, "", "")
		march := newPlan(userID, "2024-03-01", "2024-03-07")
		january := newPlan(userID, "2024-01-01", "2024-01-07")
		mustCreate(t, repo, undated, march, january)
		if err := repo.AddSlot(ctx, newSlot(march.ID, 1, entity.MealTypeSnack)); err != nil {
			t.Fatal(err)
		}

		plans, err := repo.ListByUserID(ctx, userID, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(plans) != 3 {
			t.Fatalf("got %d plans", len(plans))
		}
		if plans[0].ID != january.ID || plans[1].ID != march.ID || plans[2].ID != undated.ID {
			t.Errorf("order = %s, %s, %s", plans[0].Name, plans[1].Name, plans[2].Name)
		}
		if plans[2].StartDate != "" || plans[2].EndDate != "" {
			t.Errorf("undated plan read back as [%s, %s]", plans[2].StartDate, plans[2].EndDate)
		}
		if len(plans[1].Slots) != 1 || len(plans[0].Slots) != 0 {
			t.Error("slots attached to the wrong plan")
		}

		ids, err := repo.ListUserIDsWithActivePlans(ctx)
		if err != nil {
			t.Fatal(err)
		}
		found := 0
		for _, id := range ids {
			if id == userID {
				found++
			}
		}
		if found != 1 {
			t.Errorf("user listed %d times, want once", found)
		}
	})

	t.Run("update details", func(t *testing.T) {
		plan := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		mustCreate(t, repo, plan)

		plan.Name = "Renamed"
		plan.IsFavorite = true
		plan.EndDate = "2024-01-10"
		if err := repo.Update(ctx, plan); err != nil {
			t.Fatal(err)
		}

		got, err := repo.GetByID(ctx, plan.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Renamed" || !got.IsFavorite || got.EndDate != "2024-01-10" {
			t.Errorf("got %+v", got)
		}

		missing := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		if err := repo.Update(ctx, missing); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("Update unknown: %v", err)
		}
	})

	t.Run("slot cooked state", func(t *testing.T) {
		plan := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		mustCreate(t, repo, plan)
		slot := newSlot(plan.ID, 2, entity.MealTypeLunch)
		if err := repo.AddSlot(ctx, slot); err != nil {
			t.Fatal(err)
		}

		// Absolute writes are idempotent.
		for i := 0; i < 2; i++ {
			if err := repo.SetSlotCooked(ctx, plan.ID, slot.ID, true); err != nil {
				t.Fatal(err)
			}
		}

		got, err := repo.GetSlot(ctx, plan.ID, slot.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsCooked || got.DayIndex != 2 {
			t.Errorf("slot = %+v", got)
		}

		if _, err := repo.GetSlot(ctx, uuid.New(), slot.ID); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("GetSlot with wrong plan: %v", err)
		}
		if err := repo.SetSlotCooked(ctx, uuid.New(), slot.ID, false); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("SetSlotCooked with wrong plan: %v", err)
		}
	})

	t.Run("delete removes slots", func(t *testing.T) {
		plan := newPlan(uuid.New(), "2024-01-01", "2024-01-07")
		mustCreate(t, repo, plan)
		slot := newSlot(plan.ID, 0, entity.MealTypeDinner)
		if err := repo.AddSlot(ctx, slot); err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete(ctx, plan.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.GetByID(ctx, plan.ID); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("deleted plan still readable: %v", err)
		}
		if _, err := repo.GetSlot(ctx, plan.ID, slot.ID); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("slot of deleted plan still readable: %v", err)
		}
		if err := repo.Delete(ctx, plan.ID); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("second delete: %v", err)
		}
	})
}

// RunProgressRepositoryTests exercises a ProgressRepository implementation
func RunProgressRepositoryTests(t *testing.T, repo repository.ProgressRepository) {
	ctx := context.Background()

	t.Run("missing day", func(t *testing.T) {
		if _, err := repo.GetByDate(ctx, uuid.New(), "2024-01-01"); !errors.Is(err, entity.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("merge keeps one record per day", func(t *testing.T) {
		userID := uuid.New()
		created, err := repo.MergeFlags(ctx, userID, "2024-01-02", entity.CompletionFlags{Breakfast: boolPtr(true)}, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if !created.Breakfast || created.Lunch || created.Date != "2024-01-02" || created.UserID != userID {
			t.Errorf("created %+v", created)
		}

		merged, err := repo.MergeFlags(ctx, userID, "2024-01-02", entity.CompletionFlags{Breakfast: boolPtr(false), Shopping: boolPtr(true)}, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if merged.Breakfast || !merged.Shopping {
			t.Errorf("merged %+v", merged)
		}

		all, err := repo.ListByUserID(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 {
			t.Errorf("got %d records, want 1", len(all))
		}
	})

	t.Run("partial merges keep each other's flags", func(t *testing.T) {
		userID := uuid.New()
		if _, err := repo.MergeFlags(ctx, userID, "2024-01-03", entity.CompletionFlags{Breakfast: boolPtr(true)}, time.Now().UTC()); err != nil {
			t.Fatal(err)
		}
		got, err := repo.MergeFlags(ctx, userID, "2024-01-03", entity.CompletionFlags{Lunch: boolPtr(true)}, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if !got.Breakfast || !got.Lunch || got.Dinner {
			t.Errorf("got %+v, want breakfast and lunch", got)
		}
	})

	t.Run("concurrent partial merges lose no flag", func(t *testing.T) {
		userID := uuid.New()
		flags := []entity.CompletionFlags{
			{Breakfast: boolPtr(true)},
			{Lunch: boolPtr(true)},
			{Dinner: boolPtr(true)},
			{Snack: boolPtr(true)},
			{Shopping: boolPtr(true)},
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(flags))
		for _, f := range flags {
			wg.Add(1)
			go func(f entity.CompletionFlags) {
				defer wg.Done()
				if _, err := repo.MergeFlags(ctx, userID, "2024-01-04", f, time.Now().UTC()); err != nil {
					errs <- err
				}
			}(f)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatal(err)
		}

		got, err := repo.GetByDate(ctx, userID, "2024-01-04")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Breakfast || !got.Lunch || !got.Dinner || !got.Snack || !got.Shopping {
			t.Errorf("got %+v, want every flag set", got)
		}
	})

	t.Run("list is ascending and per user", func(t *testing.T) {
		userID := uuid.New()
		for _, date := range []string{"2024-01-10", "2023-12-31", "2024-01-02"} {
			if _, err := repo.MergeFlags(ctx, userID, date, entity.CompletionFlags{Dinner: boolPtr(true)}, time.Now().UTC()); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := repo.MergeFlags(ctx, uuid.New(), "2024-01-01", entity.CompletionFlags{Lunch: boolPtr(true)}, time.Now().UTC()); err != nil {
			t.Fatal(err)
		}

		got, err := repo.ListByUserID(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"2023-12-31", "2024-01-02", "2024-01-10"}
		if len(got) != len(want) {
			t.Fatalf("got %d records, want %d", len(got), len(want))
		}
		for i, d := range want {
			if got[i].Date != d || !got[i].Dinner {
				t.Errorf("record %d = %+v, want date %s", i, got[i], d)
			}
		}
	})
}
