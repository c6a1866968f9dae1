package service

import (
	"testing"

	"mealplan-service/internal/domain/entity"
)

func day(date string, breakfast, lunch, dinner bool) *entity.DailyProgress {
	return &entity.DailyProgress{UserID: testUser, Date: date, Breakfast: breakfast, Lunch: lunch, Dinner: dinner}
}

func TestComputeStreaksExample(t *testing.T) {
	records := []*entity.DailyProgress{
		day("2024-01-06", true, false, false),
		day("2024-01-01", true, false, false),
		day("2024-01-04", false, false, false),
		day("2024-01-02", true, false, false),
		day("2024-01-05", true, false, false),
		day("2024-01-03", true, false, false),
	}

	got := ComputeStreaks(records)
	if got.Longest != 3 {
		t.Errorf("longest = %d, want 3", got.Longest)
	}
	if got.Current != 2 {
		t.Errorf("current = %d, want 2", got.Current)
	}
}

func TestComputeStreaks(t *testing.T) {
	snackOnly := day("2024-01-03", false, false, false)
	snackOnly.Snack = true
	snackOnly.Shopping = true

	tests := []struct {
		name    string
		records []*entity.DailyProgress
		want    entity.StreakResult
	}{
		{
			name: "empty log",
			want: entity.StreakResult{},
		},
		{
			name: "most recent day inactive",
			records: []*entity.DailyProgress{
				day("2024-01-01", true, true, true),
				day("2024-01-02", true, false, false),
				day("2024-01-03", false, false, false),
			},
			want: entity.StreakResult{Current: 0, Longest: 2},
		},
		{
			name: "gap breaks both streaks",
			records: []*entity.DailyProgress{
				day("2024-01-01", false, true, false),
				day("2024-01-02", false, false, true),
				day("2024-01-05", true, false, false),
			},
			want: entity.StreakResult{Current: 1, Longest: 2},
		},
		{
			name: "snack and shopping never count",
			records: []*entity.DailyProgress{
				day("2024-01-01", true, false, false),
				day("2024-01-02", true, false, false),
				snackOnly,
			},
			want: entity.StreakResult{Current: 0, Longest: 2},
		},
		{
			name: "inactive day between active days",
			records: []*entity.DailyProgress{
				day("2024-01-01", true, false, false),
				day("2024-01-02", false, false, false),
				day("2024-01-03", true, false, false),
				day("2024-01-04", true, false, false),
			},
			want: entity.StreakResult{Current: 2, Longest: 2},
		},
		{
			name: "month boundary is contiguous",
			records: []*entity.DailyProgress{
				day("2024-01-30", true, false, false),
				day("2024-01-31", true, false, false),
				day("2024-02-01", true, false, false),
			},
			want: entity.StreakResult{Current: 3, Longest: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreaks(tt.records)
			if got != tt.want {
				t.Errorf("ComputeStreaks = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStreaksDoesNotReorderInput(t *testing.T) {
	records := []*entity.DailyProgress{
		day("2024-01-02", true, false, false),
		day("2024-01-01", true, false, false),
	}
	ComputeStreaks(records)
	if records[0].Date != "2024-01-02" {
		t.Error("input slice was reordered")
	}
}
