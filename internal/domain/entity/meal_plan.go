package entity

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus represents the lifecycle state of a meal plan
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// MealPlan represents a user's meal plan covering an inclusive date window
type MealPlan struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Basic info
	Name       string
	IsFavorite bool

	// Plan window, inclusive, "YYYY-MM-DD". Empty only while a plan is being built.
	StartDate string
	EndDate   string

	IsCurrent bool
	Status    PlanStatus

	Slots []*RecipeSlot

	// Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the plan takes part in current-plan resolution
func (p *MealPlan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// HasWindow returns true once both window bounds are set
func (p *MealPlan) HasWindow() bool {
	return p.StartDate != "" && p.EndDate != ""
}
