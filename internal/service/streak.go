package service

import (
	"sort"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/pkg/daterange"
)

// ComputeStreaks derives current and longest day-completion streaks from a
// progress log. A day is active when breakfast, lunch or dinner was completed.
// Both values are recomputed from scratch on every call.
func ComputeStreaks(records []*entity.DailyProgress) entity.StreakResult {
	sorted := make([]*entity.DailyProgress, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	return entity.StreakResult{
		Current: currentStreak(sorted),
		Longest: longestStreak(sorted),
	}
}

// currentStreak walks newest to oldest and stops at the first inactive day or gap
func currentStreak(ascending []*entity.DailyProgress) int {
	if len(ascending) == 0 {
		return 0
	}

	newest := len(ascending) - 1
	if !ascending[newest].CountsTowardStreak() {
		return 0
	}

	streak := 1
	for i := newest - 1; i >= 0; i-- {
		record := ascending[i]
		if !record.CountsTowardStreak() {
			break
		}
		if !consecutive(record.Date, ascending[i+1].Date) {
			break
		}
		streak++
	}

	return streak
}

// longestStreak walks oldest to newest keeping the longest contiguous active run
func longestStreak(ascending []*entity.DailyProgress) int {
	longest, run := 0, 0

	for i, record := range ascending {
		if !record.CountsTowardStreak() {
			run = 0
			continue
		}

		if i > 0 && consecutive(ascending[i-1].Date, record.Date) {
			run++
		} else {
			run = 1
		}

		if run > longest {
			longest = run
		}
	}

	return longest
}

func consecutive(earlier, later string) bool {
	days, err := daterange.DaysBetween(earlier, later)
	return err == nil && days == 1
}
