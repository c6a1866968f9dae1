package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"
	"mealplan-service/internal/domain/service"
	"mealplan-service/pkg/daterange"
	"mealplan-service/pkg/logger"
	"mealplan-service/pkg/validation"

	"github.com/google/uuid"
)

const (
	defaultPlanName   = "Meal Plan"
	rolloverCursorKey = "rollover"
	discardTimeout    = 10 * time.Second
)

type planService struct {
	planRepo    repository.PlanRepository
	cursors     repository.CursorStore
	clock       daterange.Clock
	defaultSpan int
	log         *logger.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(
	planRepo repository.PlanRepository,
	cursors repository.CursorStore,
	clock daterange.Clock,
	defaultSpan int,
	log *logger.Logger,
) service.PlanService {
	if defaultSpan < 1 {
		defaultSpan = 7
	}

	return &planService{
		planRepo:    planRepo,
		cursors:     cursors,
		clock:       clock,
		defaultSpan: defaultSpan,
		log:         log.With("component", "plan_service"),
	}
}

func invalidArgument(err error) error {
	return fmt.Errorf("%w: %v", entity.ErrInvalidArgument, err)
}

func (s *planService) ResolveAndPersistCurrentPlan(ctx context.Context, userID uuid.UUID, today string) (*entity.MealPlan, error) {
	if err := validation.ValidateDate("today", today); err != nil {
		return nil, invalidArgument(err)
	}

	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return s.resolveAndCommit(ctx, userID, plans, today)
}

// resolveAndCommit resolves among plans and persists the winner's flag if it changed
func (s *planService) resolveAndCommit(ctx context.Context, userID uuid.UUID, plans []*entity.MealPlan, today string) (*entity.MealPlan, error) {
	winner, reason := ResolveCurrent(plans, today)
	if winner == nil {
		return nil, nil
	}

	changed, err := s.commitCurrent(ctx, userID, plans, winner)
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("current plan changed",
			"user_id", userID,
			"plan_id", winner.ID,
			"reason", reason,
			"today", today,
		)
	}

	return winner, nil
}

// commitCurrent makes winner the only current plan among plans.
//
// Writes are ordered clear-then-set so an interruption between them leaves the
// user with zero current plans, which the next resolution repairs, and never two.
// A concurrent resolver that set another plan in between makes SetCurrent fail
// with ErrInvariantViolation; we clear again and retry once so the later writer wins.
func (s *planService) commitCurrent(ctx context.Context, userID uuid.UUID, plans []*entity.MealPlan, winner *entity.MealPlan) (bool, error) {
	othersFlagged := false
	for _, plan := range plans {
		if plan.ID != winner.ID && plan.IsCurrent {
			othersFlagged = true
			break
		}
	}

	if winner.IsCurrent && !othersFlagged {
		return false, nil
	}

	if err := s.planRepo.ClearCurrent(ctx, userID, winner.ID); err != nil {
		return false, fmt.Errorf("failed to clear current plan: %w", err)
	}

	if !winner.IsCurrent {
		err := s.planRepo.SetCurrent(ctx, winner.ID)
		if errors.Is(err, entity.ErrInvariantViolation) {
			s.log.Warn("concurrent current-plan write detected, retrying",
				"user_id", userID,
				"plan_id", winner.ID,
			)
			if err := s.planRepo.ClearCurrent(ctx, userID, winner.ID); err != nil {
				return false, fmt.Errorf("failed to clear current plan: %w", err)
			}
			err = s.planRepo.SetCurrent(ctx, winner.ID)
		}
		if err != nil {
			return false, fmt.Errorf("failed to set current plan: %w", err)
		}
	}

	for _, plan := range plans {
		plan.IsCurrent = plan.ID == winner.ID
	}

	return true, nil
}

func (s *planService) HandleForeground(ctx context.Context, userID uuid.UUID) (*entity.MealPlan, error) {
	today := s.clock.Today()
	key := "user:" + userID.String()

	last, err := s.cursors.LastChecked(ctx, key)
	if err != nil {
		// A broken cursor only costs a redundant pass.
		s.log.Warn("failed to read day cursor", "user_id", userID, "error", err)
	}

	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	if last == today {
		for _, plan := range plans {
			if plan.IsCurrent {
				return plan, nil
			}
		}
		return nil, nil
	}

	current, err := s.resolveAndCommit(ctx, userID, plans, today)
	if err != nil {
		return nil, err
	}

	if err := s.cursors.MarkChecked(ctx, key, today); err != nil {
		s.log.Warn("failed to store day cursor", "user_id", userID, "error", err)
	}

	return current, nil
}

func (s *planService) RunDayRollover(ctx context.Context) (bool, error) {
	today := s.clock.Today()

	last, err := s.cursors.LastChecked(ctx, rolloverCursorKey)
	if err != nil {
		s.log.Warn("failed to read rollover cursor", "error", err)
	}
	if last == today {
		return false, nil
	}

	userIDs, err := s.planRepo.ListUserIDsWithActivePlans(ctx)
	if err != nil {
		return true, fmt.Errorf("failed to list users with active plans: %w", err)
	}

	failed := 0
	for _, userID := range userIDs {
		if _, err := s.ResolveAndPersistCurrentPlan(ctx, userID, today); err != nil {
			s.log.Error("failed to resolve current plan", "user_id", userID, "error", err)
			failed++
			continue
		}
	}

	if failed > 0 {
		// Cursor stays behind so the next tick retries the whole day.
		return true, fmt.Errorf("day rollover for %s: %d of %d users failed", today, failed, len(userIDs))
	}

	if err := s.cursors.MarkChecked(ctx, rolloverCursorKey, today); err != nil {
		s.log.Warn("failed to store rollover cursor", "error", err)
	}

	s.log.Info("day rollover completed", "today", today, "users", len(userIDs))
	return true, nil
}

func (s *planService) CreateSequencedPlan(ctx context.Context, userID uuid.UUID, name string, spanDays int, slots []*entity.RecipeSlot) (*entity.MealPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultPlanName
	}
	if err := validation.ValidatePlanName(name); err != nil {
		return nil, invalidArgument(err)
	}

	if spanDays < 0 {
		return nil, fmt.Errorf("%w: span_days must not be negative, got %d", entity.ErrInvariantViolation, spanDays)
	}
	if err := validation.ValidateSpanDays(spanDays); err != nil {
		return nil, invalidArgument(err)
	}

	for _, slot := range slots {
		if err := normalizeSlot(slot); err != nil {
			return nil, err
		}
	}

	if spanDays == 0 {
		spanDays = EffectiveSpan(slots, s.defaultSpan)
	}

	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	today := s.clock.Today()
	start, end, err := NextPlanWindow(plans, spanDays, today)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := &entity.MealPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		IsCurrent: false,
		Status:    entity.PlanStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	for _, slot := range slots {
		slot.PlanID = plan.ID
		slot.CreatedAt = now
		if err := s.planRepo.AddSlot(ctx, slot); err != nil {
			s.discardPlan(ctx, plan)
			return nil, fmt.Errorf("failed to add recipe slot: %w", err)
		}
	}
	plan.Slots = slots

	s.log.Info("plan created",
		"user_id", userID,
		"plan_id", plan.ID,
		"start_date", start,
		"end_date", end,
		"slots", len(slots),
	)

	// The new plan may be the one that should be current, e.g. the user's first plan.
	if _, err := s.resolveAndCommit(ctx, userID, append(plans, plan), today); err != nil {
		return nil, err
	}

	return plan, nil
}

// discardPlan removes a plan whose slots could not all be written.
// An incomplete plan must not keep occupying its window.
func (s *planService) discardPlan(ctx context.Context, plan *entity.MealPlan) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()

	if err := s.planRepo.Delete(ctx, plan.ID); err != nil && !errors.Is(err, entity.ErrNotFound) {
		s.log.Error("failed to discard incomplete plan",
			"user_id", plan.UserID,
			"plan_id", plan.ID,
			"error", err,
		)
	}
}

// normalizeSlot validates a slot before it is attached to a plan
func normalizeSlot(slot *entity.RecipeSlot) error {
	if slot == nil {
		return invalidArgument(fmt.Errorf("slot is required"))
	}

	if strings.TrimSpace(slot.RecipeID) == "" {
		return invalidArgument(fmt.Errorf("recipe_id is required"))
	}

	if err := validation.ValidateDayIndex(slot.DayIndex); err != nil {
		return invalidArgument(err)
	}

	mealType, err := entity.ParseMealType(string(slot.MealType))
	if err != nil {
		return err
	}
	slot.MealType = mealType

	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}

	return nil
}

func (s *planService) AddRecipeToPlan(ctx context.Context, userID uuid.UUID, planID *uuid.UUID, slot *entity.RecipeSlot) (*entity.MealPlan, *entity.RecipeSlot, error) {
	if err := normalizeSlot(slot); err != nil {
		return nil, nil, err
	}

	var plan *entity.MealPlan
	if planID != nil {
		p, err := s.planRepo.GetByIDAndUserID(ctx, *planID, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get plan: %w", err)
		}
		if !p.IsActive() {
			return nil, nil, invalidArgument(fmt.Errorf("plan %s is archived", p.ID))
		}
		plan = p
	} else {
		current, err := s.ResolveAndPersistCurrentPlan(ctx, userID, s.clock.Today())
		if err != nil {
			return nil, nil, err
		}

		if current == nil {
			created, err := s.CreateSequencedPlan(ctx, userID, "", 0, []*entity.RecipeSlot{slot})
			if err != nil {
				return nil, nil, err
			}
			return created, slot, nil
		}
		plan = current
	}

	slot.PlanID = plan.ID
	slot.CreatedAt = time.Now().UTC()
	if err := s.planRepo.AddSlot(ctx, slot); err != nil {
		return nil, nil, fmt.Errorf("failed to add recipe slot: %w", err)
	}
	plan.Slots = append(plan.Slots, slot)

	return plan, slot, nil
}

func (s *planService) ProjectSlotsForDate(ctx context.Context, userID uuid.UUID, date string) ([]*entity.RecipeSlot, error) {
	if err := validation.ValidateDate("date", date); err != nil {
		return nil, invalidArgument(err)
	}

	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return SlotsForDate(plans, date)
}

func (s *planService) ToggleSlotCooked(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error) {
	slot, err := s.planRepo.GetSlot(ctx, planID, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe slot: %w", err)
	}

	cooked := !slot.IsCooked
	if err := s.planRepo.SetSlotCooked(ctx, planID, slotID, cooked); err != nil {
		return nil, fmt.Errorf("failed to update recipe slot: %w", err)
	}
	slot.IsCooked = cooked

	return slot, nil
}

func (s *planService) PinPlan(ctx context.Context, userID, planID uuid.UUID) (*entity.MealPlan, error) {
	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var target *entity.MealPlan
	for _, plan := range plans {
		if plan.ID == planID {
			target = plan
			break
		}
	}

	if target == nil {
		// Distinguish archived plans from unknown ones.
		if _, err := s.planRepo.GetByIDAndUserID(ctx, planID, userID); err != nil {
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		return nil, fmt.Errorf("%w: archived plan %s cannot be current", entity.ErrInvariantViolation, planID)
	}

	changed, err := s.commitCurrent(ctx, userID, plans, target)
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("plan pinned as current", "user_id", userID, "plan_id", planID)
	}

	return target, nil
}

func (s *planService) ListPlans(ctx context.Context, userID uuid.UUID) ([]*entity.PlanOverview, error) {
	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return s.overviews(plans, s.clock.Today()), nil
}

// overviews labels plans; the nearest upcoming plan is marked as next
func (s *planService) overviews(plans []*entity.MealPlan, today string) []*entity.PlanOverview {
	result := make([]*entity.PlanOverview, 0, len(plans))
	var next *entity.PlanOverview

	for _, plan := range plans {
		overview := &entity.PlanOverview{
			Plan:          plan,
			Timing:        ClassifyPlan(plan, today),
			EffectiveSpan: EffectiveSpan(plan.Slots, s.defaultSpan),
		}

		if overview.Timing == entity.PlanTimingUpcoming && plan.IsActive() {
			if next == nil || startsEarlier(plan, next.Plan) {
				next = overview
			}
		}

		result = append(result, overview)
	}

	if next != nil {
		next.IsNext = true
	}

	return result
}

func (s *planService) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*entity.PlanOverview, error) {
	plan, err := s.planRepo.GetByIDAndUserID(ctx, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	today := s.clock.Today()
	if !plan.IsActive() {
		return s.overviews([]*entity.MealPlan{plan}, today)[0], nil
	}

	plans, err := s.planRepo.ListByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	for _, overview := range s.overviews(plans, today) {
		if overview.Plan.ID == planID {
			return overview, nil
		}
	}

	// Archived or deleted between the two reads.
	return s.overviews([]*entity.MealPlan{plan}, today)[0], nil
}

func (s *planService) UpdatePlanDetails(ctx context.Context, userID, planID uuid.UUID, update entity.PlanUpdate) (*entity.MealPlan, error) {
	plan, err := s.planRepo.GetByIDAndUserID(ctx, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := validation.ValidatePlanName(name); err != nil {
			return nil, invalidArgument(err)
		}
		plan.Name = name
	}

	if update.IsFavorite != nil {
		plan.IsFavorite = *update.IsFavorite
	}

	if update.StartDate != nil {
		if err := validation.ValidateDate("start_date", *update.StartDate); err != nil {
			return nil, invalidArgument(err)
		}
		plan.StartDate = *update.StartDate
	}

	if update.EndDate != nil {
		if err := validation.ValidateDate("end_date", *update.EndDate); err != nil {
			return nil, invalidArgument(err)
		}
		plan.EndDate = *update.EndDate
	}

	if plan.HasWindow() && plan.EndDate < plan.StartDate {
		return nil, fmt.Errorf("%w: end_date %s is before start_date %s", entity.ErrInvariantViolation, plan.EndDate, plan.StartDate)
	}

	plan.UpdatedAt = time.Now().UTC()
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	return plan, nil
}

func (s *planService) ArchivePlan(ctx context.Context, userID, planID uuid.UUID) error {
	plan, err := s.planRepo.GetByIDAndUserID(ctx, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}

	if err := s.planRepo.Archive(ctx, planID); err != nil {
		return fmt.Errorf("failed to archive plan: %w", err)
	}

	return s.reresolveAfterRemoval(ctx, plan)
}

func (s *planService) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	plan, err := s.planRepo.GetByIDAndUserID(ctx, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}

	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	return s.reresolveAfterRemoval(ctx, plan)
}

// reresolveAfterRemoval picks a successor when the removed plan was current
func (s *planService) reresolveAfterRemoval(ctx context.Context, removed *entity.MealPlan) error {
	if !removed.IsCurrent {
		return nil
	}

	if _, err := s.ResolveAndPersistCurrentPlan(ctx, removed.UserID, s.clock.Today()); err != nil {
		return fmt.Errorf("failed to resolve successor plan: %w", err)
	}

	return nil
}
