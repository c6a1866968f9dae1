package postgres

import (
	"errors"
	"fmt"

	"mealplan-service/internal/domain/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"

	currentPlanIndex = "idx_meal_plans_one_current"
)

// storeError maps a pgx error onto the domain sentinels
func storeError(action string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, entity.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation && pgErr.ConstraintName == currentPlanIndex:
			return fmt.Errorf("failed to %s: another plan is current: %w", action, entity.ErrInvariantViolation)
		case pgErr.Code == checkViolation:
			return fmt.Errorf("failed to %s: %s: %w", action, pgErr.ConstraintName, entity.ErrInvariantViolation)
		case pgErr.Code == foreignKeyViolation:
			return fmt.Errorf("failed to %s: %w", action, entity.ErrNotFound)
		}
	}

	return fmt.Errorf("failed to %s: %w: %w", action, entity.ErrTransientStore, err)
}

// nullDate maps an unset date to SQL NULL
func nullDate(date string) any {
	if date == "" {
		return nil
	}
	return date
}
