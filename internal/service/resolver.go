package service

import (
	"mealplan-service/internal/domain/entity"
	"mealplan-service/pkg/daterange"
)

// ResolutionReason records which rule picked the current plan
type ResolutionReason string

const (
	ResolutionNone     ResolutionReason = "none"
	ResolutionPinned   ResolutionReason = "pinned"
	ResolutionInWindow ResolutionReason = "in_window"
	ResolutionUpcoming ResolutionReason = "upcoming"
)

// ResolveCurrent picks the single current plan among plans for today.
//
// Rules, first match wins:
//  1. an active plan already flagged current (explicit pin, even if its window has ended)
//  2. the active plan whose window contains today; latest start date wins
//  3. the active plan with the nearest start date after today
//
// Archived and undated plans are ignored. It never writes; see commitCurrent.
func ResolveCurrent(plans []*entity.MealPlan, today string) (*entity.MealPlan, ResolutionReason) {
	var pinned, inWindow, upcoming *entity.MealPlan

	for _, plan := range plans {
		if !plan.IsActive() {
			continue
		}

		// More than one flagged plan means an interrupted or raced write;
		// keep the most recently started one, the commit clears the rest.
		if plan.IsCurrent && (pinned == nil || startsLater(plan, pinned)) {
			pinned = plan
		}

		if !plan.HasWindow() {
			continue
		}

		switch ClassifyPlan(plan, today) {
		case entity.PlanTimingCurrent:
			if inWindow == nil || startsLater(plan, inWindow) {
				inWindow = plan
			}
		case entity.PlanTimingUpcoming:
			if upcoming == nil || startsEarlier(plan, upcoming) {
				upcoming = plan
			}
		}
	}

	switch {
	case pinned != nil:
		return pinned, ResolutionPinned
	case inWindow != nil:
		return inWindow, ResolutionInWindow
	case upcoming != nil:
		return upcoming, ResolutionUpcoming
	default:
		return nil, ResolutionNone
	}
}

// IsPlanCurrentCandidate reports whether today falls inside the plan window
func IsPlanCurrentCandidate(plan *entity.MealPlan, today string) bool {
	return ClassifyPlan(plan, today) == entity.PlanTimingCurrent
}

// ClassifyPlan labels a plan window relative to today. Resolution and plan
// listings both use it so they never disagree on what is current, upcoming or past.
func ClassifyPlan(plan *entity.MealPlan, today string) entity.PlanTiming {
	switch {
	case !plan.HasWindow():
		return entity.PlanTimingUndated
	case daterange.IsWithin(today, plan.StartDate, plan.EndDate):
		return entity.PlanTimingCurrent
	case daterange.IsFuture(plan.StartDate, today):
		return entity.PlanTimingUpcoming
	default:
		return entity.PlanTimingPast
	}
}

func startsLater(a, b *entity.MealPlan) bool {
	if a.StartDate != b.StartDate {
		return a.StartDate > b.StartDate
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func startsEarlier(a, b *entity.MealPlan) bool {
	if a.StartDate != b.StartDate {
		return a.StartDate < b.StartDate
	}
	return a.CreatedAt.After(b.CreatedAt)
}
