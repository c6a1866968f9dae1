package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"
	"mealplan-service/internal/domain/service"
	"mealplan-service/pkg/logger"
	"mealplan-service/pkg/validation"

	"github.com/google/uuid"
)

type progressService struct {
	progressRepo   repository.ProgressRepository
	trigger        service.AchievementTrigger
	triggerTimeout time.Duration
	log            *logger.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo repository.ProgressRepository,
	trigger service.AchievementTrigger,
	triggerTimeout time.Duration,
	log *logger.Logger,
) service.ProgressService {
	if triggerTimeout <= 0 {
		triggerTimeout = 30 * time.Second
	}

	return &progressService{
		progressRepo:   progressRepo,
		trigger:        trigger,
		triggerTimeout: triggerTimeout,
		log:            log.With("component", "progress_service"),
	}
}

func (s *progressService) RecordDailyCompletion(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags) (progress *entity.DailyProgress, err error) {
	if err := validation.ValidateDate("date", date); err != nil {
		return nil, invalidArgument(err)
	}

	// The achievement sync fires after every write attempt, failed ones included.
	defer func() {
		s.fireAchievementSync(ctx, userID, date, progress)
	}()

	merged, err := s.progressRepo.MergeFlags(ctx, userID, date, flags, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to save daily progress: %w", err)
	}

	return merged, nil
}

// fireAchievementSync recomputes streaks and notifies the achievement evaluator
// in the background. Failures are logged and never reach the caller.
func (s *progressService) fireAchievementSync(ctx context.Context, userID uuid.UUID, date string, progress *entity.DailyProgress) {
	if s.trigger == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.triggerTimeout)
		defer cancel()

		event := &service.AchievementSyncEvent{
			UserID:   userID,
			Date:     date,
			Progress: progress,
		}

		streaks, err := s.ComputeStreaks(ctx, userID)
		if err != nil {
			s.log.Warn("failed to compute streaks for achievement sync", "user_id", userID, "error", err)
		} else {
			event.Streaks = streaks
		}

		if err := s.trigger.TriggerAchievementSync(ctx, event); err != nil {
			s.log.Error("achievement sync failed", "user_id", userID, "date", date, "error", err)
		}
	}()
}

func (s *progressService) GetDailyProgress(ctx context.Context, userID uuid.UUID, date string) (*entity.DailyProgress, error) {
	if err := validation.ValidateDate("date", date); err != nil {
		return nil, invalidArgument(err)
	}

	progress, err := s.progressRepo.GetByDate(ctx, userID, date)
	if errors.Is(err, entity.ErrNotFound) {
		return &entity.DailyProgress{UserID: userID, Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}

	return progress, nil
}

func (s *progressService) ComputeStreaks(ctx context.Context, userID uuid.UUID) (*entity.StreakResult, error) {
	records, err := s.progressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily progress: %w", err)
	}

	result := ComputeStreaks(records)
	return &result, nil
}
