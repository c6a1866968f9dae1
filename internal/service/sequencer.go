package service

import (
	"fmt"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/pkg/daterange"
)

// NextPlanWindow computes the window of a new plan appended right after the
// user's latest active plan, or starting today when there is none.
// Archived plans never influence the result.
func NextPlanWindow(plans []*entity.MealPlan, spanDays int, today string) (start, end string, err error) {
	if spanDays < 1 {
		return "", "", fmt.Errorf("%w: plan span must be at least 1 day, got %d", entity.ErrInvariantViolation, spanDays)
	}

	latestEnd := ""
	for _, plan := range plans {
		if !plan.IsActive() || plan.EndDate == "" {
			continue
		}
		if plan.EndDate > latestEnd {
			latestEnd = plan.EndDate
		}
	}

	if latestEnd == "" {
		start = today
	} else {
		start, err = daterange.AddDays(latestEnd, 1)
		if err != nil {
			return "", "", fmt.Errorf("failed to chain after %s: %w", latestEnd, err)
		}
	}

	end, err = daterange.AddDays(start, spanDays-1)
	if err != nil {
		return "", "", err
	}

	return start, end, nil
}

// EffectiveSpan returns max(day_index)+1 over the slots, or defaultSpan without slots.
// Day pickers use it; current-plan resolution uses the stored window instead.
func EffectiveSpan(slots []*entity.RecipeSlot, defaultSpan int) int {
	if len(slots) == 0 {
		return defaultSpan
	}

	maxIndex := 0
	for _, slot := range slots {
		if slot.DayIndex > maxIndex {
			maxIndex = slot.DayIndex
		}
	}

	return maxIndex + 1
}
