package service

import (
	"mealplan-service/internal/domain/entity"
	"mealplan-service/pkg/daterange"
)

// DateToDayIndex maps a calendar date to its zero-based day within a plan.
// Negative or oversized results mean "no slot for this date in this plan".
func DateToDayIndex(date, planStart string) (int, error) {
	return daterange.DaysBetween(planStart, date)
}

// DayIndexToDate maps a zero-based day of a plan back to a calendar date
func DayIndexToDate(dayIndex int, planStart string) (string, error) {
	return daterange.AddDays(planStart, dayIndex)
}

// SlotsForDate unions the slots of every active plan whose window contains date
// and whose day index matches. Slots from overlapping plans are all returned.
func SlotsForDate(plans []*entity.MealPlan, date string) ([]*entity.RecipeSlot, error) {
	slots := make([]*entity.RecipeSlot, 0)

	for _, plan := range plans {
		if !plan.IsActive() || !plan.HasWindow() {
			continue
		}
		if !daterange.IsWithin(date, plan.StartDate, plan.EndDate) {
			continue
		}

		dayIndex, err := DateToDayIndex(date, plan.StartDate)
		if err != nil {
			return nil, err
		}

		for _, slot := range plan.Slots {
			if slot.DayIndex == dayIndex {
				slots = append(slots, slot)
			}
		}
	}

	return slots, nil
}
