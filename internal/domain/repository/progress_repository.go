package repository

import (
	"context"
	"time"

	"mealplan-service/internal/domain/entity"

	"github.com/google/uuid"
)

// ProgressRepository defines the interface for daily progress persistence
type ProgressRepository interface {
	// GetByDate retrieves the record for one day
	GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entity.DailyProgress, error)

	// MergeFlags applies the set flags to the record for (user, date) in a single
	// statement, creating it when missing, and returns the stored record.
	// Unset flags keep their stored value even under concurrent writers.
	MergeFlags(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags, updatedAt time.Time) (*entity.DailyProgress, error)

	// ListByUserID retrieves the whole log in ascending date order
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.DailyProgress, error)
}

// CursorStore persists the last calendar date a maintenance check ran for a key
type CursorStore interface {
	// LastChecked returns the stored date, or "" if the key was never marked
	LastChecked(ctx context.Context, key string) (string, error)

	// MarkChecked stores date for key
	MarkChecked(ctx context.Context, key, date string) error
}
