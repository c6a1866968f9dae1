package service

import (
	"context"
	"mealplan-service/internal/domain/entity"

	"github.com/google/uuid"
)

// PlanService defines the interface for meal plan scheduling logic
type PlanService interface {
	// ResolveAndPersistCurrentPlan picks the user's current plan for today and persists the flag
	ResolveAndPersistCurrentPlan(ctx context.Context, userID uuid.UUID, today string) (*entity.MealPlan, error)

	// HandleForeground re-resolves the current plan only when the calendar day changed
	// since the user's last check
	HandleForeground(ctx context.Context, userID uuid.UUID) (*entity.MealPlan, error)

	// RunDayRollover re-resolves every user's current plan once per calendar day.
	// Returns false when today was already processed.
	RunDayRollover(ctx context.Context) (bool, error)

	// CreateSequencedPlan creates a plan chained after the user's latest plan.
	// spanDays 0 derives the span from the slots; a negative span is an invariant violation.
	CreateSequencedPlan(ctx context.Context, userID uuid.UUID, name string, spanDays int, slots []*entity.RecipeSlot) (*entity.MealPlan, error)

	// AddRecipeToPlan adds a slot to a plan; a nil planID targets the current plan,
	// creating a sequenced one when there is none
	AddRecipeToPlan(ctx context.Context, userID uuid.UUID, planID *uuid.UUID, slot *entity.RecipeSlot) (*entity.MealPlan, *entity.RecipeSlot, error)

	// ProjectSlotsForDate returns the slots of every active plan covering date
	ProjectSlotsForDate(ctx context.Context, userID uuid.UUID, date string) ([]*entity.RecipeSlot, error)

	// ToggleSlotCooked flips a slot's cooked flag
	ToggleSlotCooked(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error)

	// PinPlan makes a plan current by explicit user choice
	PinPlan(ctx context.Context, userID, planID uuid.UUID) (*entity.MealPlan, error)

	// ListPlans lists the user's active plans with timing labels
	ListPlans(ctx context.Context, userID uuid.UUID) ([]*entity.PlanOverview, error)

	// GetPlan retrieves one plan with its timing label
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*entity.PlanOverview, error)

	// UpdatePlanDetails renames, (un)favorites or re-dates a plan
	UpdatePlanDetails(ctx context.Context, userID, planID uuid.UUID, update entity.PlanUpdate) (*entity.MealPlan, error)

	// ArchivePlan archives a plan and re-resolves the current plan
	ArchivePlan(ctx context.Context, userID, planID uuid.UUID) error

	// DeletePlan deletes a plan and re-resolves the current plan
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
}
