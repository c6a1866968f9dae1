package service

import (
	"testing"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/pkg/daterange"

	"github.com/google/uuid"
)

var testUser = uuid.MustParse("6f1c1c2e-8e45-4b4e-9d7c-0b3f3c1f7a11")

func newPlan(start, end string) *entity.MealPlan {
	return &entity.MealPlan{
		ID:        uuid.New(),
		UserID:    testUser,
		Name:      "plan " + start,
		StartDate: start,
		EndDate:   end,
		Status:    entity.PlanStatusActive,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func offset(t *testing.T, today string, days int) string {
	t.Helper()
	d, err := daterange.AddDays(today, days)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestResolveCurrentNearestFuture(t *testing.T) {
	today := "2024-03-10"
	p2 := newPlan(offset(t, today, 2), offset(t, today, 4))
	p5 := newPlan(offset(t, today, 5), offset(t, today, 9))
	p10 := newPlan(offset(t, today, 10), offset(t, today, 16))

	got, reason := ResolveCurrent([]*entity.MealPlan{p10, p5, p2}, today)
	if got != p2 {
		t.Fatalf("expected the +2 plan, got %v", got)
	}
	if reason != ResolutionUpcoming {
		t.Errorf("reason = %s, want %s", reason, ResolutionUpcoming)
	}
}

func TestResolveCurrentPinnedWinsEvenWhenExpired(t *testing.T) {
	today := "2024-03-10"
	expired := newPlan("2024-02-01", "2024-02-07")
	expired.IsCurrent = true
	covering := newPlan("2024-03-08", "2024-03-14")

	got, reason := ResolveCurrent([]*entity.MealPlan{covering, expired}, today)
	if got != expired || reason != ResolutionPinned {
		t.Fatalf("got %v (%s), want pinned expired plan", got, reason)
	}
}

func TestResolveCurrentPrefersLatestStartAmongOverlapping(t *testing.T) {
	today := "2024-03-10"
	older := newPlan("2024-03-01", "2024-03-20")
	newer := newPlan("2024-03-09", "2024-03-12")

	got, reason := ResolveCurrent([]*entity.MealPlan{newer, older}, today)
	if got != newer || reason != ResolutionInWindow {
		t.Fatalf("got %v (%s), want most recently started plan", got, reason)
	}
}

func TestResolveCurrentSameStartPrefersNewestCreated(t *testing.T) {
	today := "2024-03-10"
	a := newPlan("2024-03-10", "2024-03-12")
	b := newPlan("2024-03-10", "2024-03-12")
	b.CreatedAt = a.CreatedAt.Add(time.Hour)

	if got, _ := ResolveCurrent([]*entity.MealPlan{a, b}, today); got != b {
		t.Fatal("expected the later-created plan to win a start-date tie")
	}
	if got, _ := ResolveCurrent([]*entity.MealPlan{b, a}, today); got != b {
		t.Fatal("tie-break must not depend on input order")
	}
}

func TestResolveCurrentIgnoresArchivedAndUndated(t *testing.T) {
	today := "2024-03-10"
	archived := newPlan("2024-03-09", "2024-03-11")
	archived.Status = entity.PlanStatusArchived
	archived.IsCurrent = true
	undated := newPlan("", "")
	past := newPlan("2024-01-01", "2024-01-07")

	got, reason := ResolveCurrent([]*entity.MealPlan{archived, undated, past}, today)
	if got != nil || reason != ResolutionNone {
		t.Fatalf("got %v (%s), want no current plan", got, reason)
	}
}

func TestResolveCurrentInWindowBeatsFuture(t *testing.T) {
	today := "2024-03-10"
	future := newPlan("2024-03-11", "2024-03-17")
	covering := newPlan("2024-03-04", "2024-03-10")

	if got, _ := ResolveCurrent([]*entity.MealPlan{future, covering}, today); got != covering {
		t.Fatal("a plan covering today must beat an upcoming plan")
	}
}

func TestClassifyPlan(t *testing.T) {
	today := "2024-03-10"
	tests := []struct {
		name  string
		plan  *entity.MealPlan
		want  entity.PlanTiming
		isCur bool
	}{
		{"covers today", newPlan("2024-03-10", "2024-03-10"), entity.PlanTimingCurrent, true},
		{"starts tomorrow", newPlan("2024-03-11", "2024-03-12"), entity.PlanTimingUpcoming, false},
		{"ended yesterday", newPlan("2024-03-01", "2024-03-09"), entity.PlanTimingPast, false},
		{"no window", newPlan("", ""), entity.PlanTimingUndated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPlan(tt.plan, today); got != tt.want {
				t.Errorf("ClassifyPlan = %s, want %s", got, tt.want)
			}
			if got := IsPlanCurrentCandidate(tt.plan, today); got != tt.isCur {
				t.Errorf("IsPlanCurrentCandidate = %v, want %v", got, tt.isCur)
			}
		})
	}
}
