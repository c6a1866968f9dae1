package repository

import (
	"context"
	"mealplan-service/internal/domain/entity"

	"github.com/google/uuid"
)

// PlanRepository defines the interface for meal plan and recipe slot persistence.
// Every write is a single-row statement that is safe to retry.
type PlanRepository interface {
	// Create inserts a plan; re-inserting the same ID is a no-op
	Create(ctx context.Context, plan *entity.MealPlan) error

	// GetByID retrieves a plan with its slots
	GetByID(ctx context.Context, planID uuid.UUID) (*entity.MealPlan, error)

	// GetByIDAndUserID retrieves a plan with its slots (for authorization)
	GetByIDAndUserID(ctx context.Context, planID, userID uuid.UUID) (*entity.MealPlan, error)

	// ListByUserID retrieves a user's plans with their slots, ordered by start date
	ListByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.MealPlan, error)

	// Update updates name, favorite flag and the date window
	Update(ctx context.Context, plan *entity.MealPlan) error

	// Archive marks a plan archived and clears its current flag
	Archive(ctx context.Context, planID uuid.UUID) error

	// Delete removes a plan and its slots
	Delete(ctx context.Context, planID uuid.UUID) error

	// ClearCurrent clears is_current on every plan of the user except keepID
	// (uuid.Nil keeps none)
	ClearCurrent(ctx context.Context, userID, keepID uuid.UUID) error

	// SetCurrent sets is_current on one plan. Returns ErrInvariantViolation if another
	// plan of the same user is still current.
	SetCurrent(ctx context.Context, planID uuid.UUID) error

	// ListUserIDsWithActivePlans returns every user owning at least one active plan
	ListUserIDsWithActivePlans(ctx context.Context) ([]uuid.UUID, error)

	// AddSlot inserts a recipe slot; re-inserting the same ID is a no-op
	AddSlot(ctx context.Context, slot *entity.RecipeSlot) error

	// GetSlot retrieves a slot of a plan
	GetSlot(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error)

	// SetSlotCooked writes an absolute cooked state
	SetSlotCooked(ctx context.Context, planID, slotID uuid.UUID, cooked bool) error
}
