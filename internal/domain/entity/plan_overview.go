package entity

// PlanTiming labels a plan's window relative to today
type PlanTiming string

const (
	PlanTimingCurrent  PlanTiming = "current"
	PlanTimingUpcoming PlanTiming = "upcoming"
	PlanTimingPast     PlanTiming = "past"
	PlanTimingUndated  PlanTiming = "undated"
)

// PlanOverview is a plan decorated for plan lists and day pickers.
// EffectiveSpan comes from the slots, the window from the stored dates; they may disagree.
type PlanOverview struct {
	Plan          *MealPlan
	Timing        PlanTiming
	IsNext        bool
	EffectiveSpan int
}

// PlanUpdate carries the editable fields of a plan; nil leaves a field untouched
type PlanUpdate struct {
	Name       *string
	IsFavorite *bool
	StartDate  *string
	EndDate    *string
}
