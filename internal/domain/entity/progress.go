package entity

import (
	"time"

	"github.com/google/uuid"
)

// DailyProgress holds one user's completion flags for one calendar day
type DailyProgress struct {
	UserID uuid.UUID
	Date   string // "YYYY-MM-DD"

	Breakfast bool
	Lunch     bool
	Dinner    bool
	Snack     bool
	Shopping  bool

	UpdatedAt time.Time
}

// CountsTowardStreak returns true if a main meal was completed.
// Snack and shopping completion never count.
func (p *DailyProgress) CountsTowardStreak() bool {
	return p.Breakfast || p.Lunch || p.Dinner
}

// CompletionFlags is a partial update of a day's flags; nil leaves a flag untouched
type CompletionFlags struct {
	Breakfast *bool
	Lunch     *bool
	Dinner    *bool
	Snack     *bool
	Shopping  *bool
}

// IsEmpty returns true if no flag is set
func (f CompletionFlags) IsEmpty() bool {
	return f.Breakfast == nil && f.Lunch == nil && f.Dinner == nil && f.Snack == nil && f.Shopping == nil
}

// ApplyTo merges the set flags into p
func (f CompletionFlags) ApplyTo(p *DailyProgress) {
	if f.Breakfast != nil {
		p.Breakfast = *f.Breakfast
	}
	if f.Lunch != nil {
		p.Lunch = *f.Lunch
	}
	if f.Dinner != nil {
		p.Dinner = *f.Dinner
	}
	if f.Snack != nil {
		p.Snack = *f.Snack
	}
	if f.Shopping != nil {
		p.Shopping = *f.Shopping
	}
}

// StreakResult is derived from the progress log on every request, never stored
type StreakResult struct {
	Current int
	Longest int
}
