package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealType represents the meal a recipe slot is planned for
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// ParseMealType parses a meal type case-insensitively
func ParseMealType(s string) (MealType, error) {
	switch mt := MealType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return mt, nil
	default:
		return "", fmt.Errorf("%w: unknown meal_type %q", ErrInvalidArgument, s)
	}
}

// RecipeSlot is a recipe placed on one day of a meal plan
type RecipeSlot struct {
	ID     uuid.UUID
	PlanID uuid.UUID

	// Recipe reference from the external recipe API
	RecipeID   string
	RecipeName string

	// Zero-based day of the plan window
	DayIndex int
	MealType MealType
	IsCooked bool

	CreatedAt time.Time
}
