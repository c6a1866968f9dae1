package service

import (
	"context"

	"mealplan-service/internal/domain/service"
	"mealplan-service/pkg/logger"
)

type logOnlyTrigger struct {
	log *logger.Logger
}

// NewLogOnlyAchievementTrigger returns a trigger that only logs events.
// Used when no message broker is configured.
func NewLogOnlyAchievementTrigger(log *logger.Logger) service.AchievementTrigger {
	return &logOnlyTrigger{log: log.With("component", "achievement_trigger")}
}

func (t *logOnlyTrigger) TriggerAchievementSync(ctx context.Context, event *service.AchievementSyncEvent) error {
	kv := []interface{}{"user_id", event.UserID, "date", event.Date, "write_ok", event.Progress != nil}
	if event.Streaks != nil {
		kv = append(kv, "current_streak", event.Streaks.Current, "longest_streak", event.Streaks.Longest)
	}

	t.log.Info("achievement sync requested", kv...)
	return nil
}
