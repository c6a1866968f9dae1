package service

import (
	"context"
	"mealplan-service/internal/domain/entity"

	"github.com/google/uuid"
)

// ProgressService defines the interface for daily progress and streaks
type ProgressService interface {
	// RecordDailyCompletion upserts a day's flags, then fires the achievement sync
	RecordDailyCompletion(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags) (*entity.DailyProgress, error)

	// GetDailyProgress retrieves one day's record; a missing day reads as all-false
	GetDailyProgress(ctx context.Context, userID uuid.UUID, date string) (*entity.DailyProgress, error)

	// ComputeStreaks recomputes streaks from the full progress log
	ComputeStreaks(ctx context.Context, userID uuid.UUID) (*entity.StreakResult, error)
}

// AchievementSyncEvent is sent to the achievement evaluator after every progress write
type AchievementSyncEvent struct {
	UserID uuid.UUID
	Date   string

	// Progress is nil when the write failed
	Progress *entity.DailyProgress
	// Streaks is nil when they could not be recomputed
	Streaks *entity.StreakResult
}

// AchievementTrigger is the fire-and-forget hook into achievement evaluation
type AchievementTrigger interface {
	TriggerAchievementSync(ctx context.Context, event *AchievementSyncEvent) error
}
