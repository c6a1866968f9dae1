package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/service"

	"github.com/google/uuid"
)

// fakePlanRepo is an in-memory PlanRepository recording write order
type fakePlanRepo struct {
	mu     sync.Mutex
	plans  map[uuid.UUID]*entity.MealPlan
	slots  map[uuid.UUID]*entity.RecipeSlot
	writes []string

	// failSetCurrent makes the next n SetCurrent calls fail with the error
	failSetCurrent   int
	setCurrentErr    error
	beforeSetCurrent func()
	listErr          error

	// addSlotErr fails AddSlot once addSlotOK calls have succeeded
	addSlotErr error
	addSlotOK  int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans: make(map[uuid.UUID]*entity.MealPlan),
		slots: make(map[uuid.UUID]*entity.RecipeSlot),
	}
}

func clonePlan(p *entity.MealPlan) *entity.MealPlan {
	c := *p
	c.Slots = nil
	return &c
}

func (r *fakePlanRepo) seed(plans ...*entity.MealPlan) {
	for _, p := range plans {
		r.plans[p.ID] = clonePlan(p)
		for _, s := range p.Slots {
			sc := *s
			sc.PlanID = p.ID
			r.slots[s.ID] = &sc
		}
	}
}

func (r *fakePlanRepo) withSlots(p *entity.MealPlan) *entity.MealPlan {
	c := clonePlan(p)
	for _, s := range r.slots {
		if s.PlanID == p.ID {
			sc := *s
			c.Slots = append(c.Slots, &sc)
		}
	}
	sort.Slice(c.Slots, func(i, j int) bool { return c.Slots[i].DayIndex < c.Slots[j].DayIndex })
	return c
}

func (r *fakePlanRepo) currentIDs(userID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range r.plans {
		if p.UserID == userID && p.IsCurrent && p.IsActive() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *entity.MealPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, "create")
	if _, ok := r.plans[plan.ID]; !ok {
		r.plans[plan.ID] = clonePlan(plan)
	}
	return nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, planID uuid.UUID) (*entity.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, entity.ErrNotFound)
	}
	return r.withSlots(p), nil
}

func (r *fakePlanRepo) GetByIDAndUserID(ctx context.Context, planID, userID uuid.UUID) (*entity.MealPlan, error) {
	p, err := r.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("plan %s: %w", planID, entity.ErrNotFound)
	}
	return p, nil
}

func (r *fakePlanRepo) ListByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.MealPlan
	for _, p := range r.plans {
		if p.UserID != userID || (activeOnly && !p.IsActive()) {
			continue
		}
		out = append(out, r.withSlots(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *entity.MealPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[plan.ID]
	if !ok {
		return entity.ErrNotFound
	}
	p.Name, p.IsFavorite, p.StartDate, p.EndDate = plan.Name, plan.IsFavorite, plan.StartDate, plan.EndDate
	r.writes = append(r.writes, "update")
	return nil
}

func (r *fakePlanRepo) Archive(ctx context.Context, planID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return entity.ErrNotFound
	}
	p.Status = entity.PlanStatusArchived
	p.IsCurrent = false
	r.writes = append(r.writes, "archive")
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, planID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[planID]; !ok {
		return entity.ErrNotFound
	}
	delete(r.plans, planID)
	for id, s := range r.slots {
		if s.PlanID == planID {
			delete(r.slots, id)
		}
	}
	r.writes = append(r.writes, "delete")
	return nil
}

func (r *fakePlanRepo) ClearCurrent(ctx context.Context, userID, keepID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.UserID == userID && p.ID != keepID {
			p.IsCurrent = false
		}
	}
	r.writes = append(r.writes, "clear")
	return nil
}

func (r *fakePlanRepo) SetCurrent(ctx context.Context, planID uuid.UUID) error {
	if r.beforeSetCurrent != nil {
		hook := r.beforeSetCurrent
		r.beforeSetCurrent = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, "set")
	if r.failSetCurrent > 0 {
		r.failSetCurrent--
		return r.setCurrentErr
	}
	p, ok := r.plans[planID]
	if !ok {
		return entity.ErrNotFound
	}
	for _, other := range r.plans {
		if other.UserID == p.UserID && other.ID != planID && other.IsCurrent && other.IsActive() {
			return fmt.Errorf("plan %s already current: %w", other.ID, entity.ErrInvariantViolation)
		}
	}
	p.IsCurrent = true
	return nil
}

func (r *fakePlanRepo) ListUserIDsWithActivePlans(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, p := range r.plans {
		if p.IsActive() && !seen[p.UserID] {
			seen[p.UserID] = true
			out = append(out, p.UserID)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) AddSlot(ctx context.Context, slot *entity.RecipeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[slot.PlanID]; !ok {
		return entity.ErrNotFound
	}
	if r.addSlotErr != nil {
		if r.addSlotOK == 0 {
			return r.addSlotErr
		}
		r.addSlotOK--
	}
	if _, ok := r.slots[slot.ID]; !ok {
		sc := *slot
		r.slots[slot.ID] = &sc
	}
	return nil
}

func (r *fakePlanRepo) GetSlot(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.PlanID != planID {
		return nil, fmt.Errorf("slot %s: %w", slotID, entity.ErrNotFound)
	}
	sc := *s
	return &sc, nil
}

func (r *fakePlanRepo) SetSlotCooked(ctx context.Context, planID, slotID uuid.UUID, cooked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.PlanID != planID {
		return entity.ErrNotFound
	}
	s.IsCooked = cooked
	return nil
}

// fakeProgressRepo is an in-memory ProgressRepository
type fakeProgressRepo struct {
	mu        sync.Mutex
	records   map[string]*entity.DailyProgress
	upsertErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*entity.DailyProgress)}
}

func progressKey(userID uuid.UUID, date string) string {
	return userID.String() + "/" + date
}

func (r *fakeProgressRepo) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entity.DailyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[progressKey(userID, date)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProgressRepo) MergeFlags(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags, updatedAt time.Time) (*entity.DailyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	key := progressKey(userID, date)
	p, ok := r.records[key]
	if !ok {
		p = &entity.DailyProgress{UserID: userID, Date: date}
		r.records[key] = p
	}
	flags.ApplyTo(p)
	p.UpdatedAt = updatedAt
	c := *p
	return &c, nil
}

func (r *fakeProgressRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.DailyProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DailyProgress
	for _, p := range r.records {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// fakeCursors is an in-memory CursorStore
type fakeCursors struct {
	mu    sync.Mutex
	dates map[string]string
}

func newFakeCursors() *fakeCursors {
	return &fakeCursors{dates: make(map[string]string)}
}

func (c *fakeCursors) LastChecked(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dates[key], nil
}

func (c *fakeCursors) MarkChecked(ctx context.Context, key, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates[key] = date
	return nil
}

// recordingTrigger delivers every event on a channel
type recordingTrigger struct {
	events chan *service.AchievementSyncEvent
	err    error
}

func newRecordingTrigger() *recordingTrigger {
	return &recordingTrigger{events: make(chan *service.AchievementSyncEvent, 16)}
}

func (t *recordingTrigger) TriggerAchievementSync(ctx context.Context, event *service.AchievementSyncEvent) error {
	t.events <- event
	return t.err
}
