package sqlite

import (
	"context"
	"database/sql"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/google/uuid"
)

const progressColumns = `
	user_id, date, breakfast, lunch, dinner, snack, shopping, updated_at
`

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a SQLite-backed daily progress repository
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func scanProgress(row rowScanner) (*entity.DailyProgress, error) {
	p := &entity.DailyProgress{}
	err := row.Scan(
		&p.UserID, &p.Date,
		&p.Breakfast, &p.Lunch, &p.Dinner, &p.Snack, &p.Shopping, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *progressRepository) GetByDate(ctx context.Context, userID uuid.UUID, date string) (*entity.DailyProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE user_id = ? AND date = ?`

	progress, err := scanProgress(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		return nil, storeError("get daily progress", err)
	}

	return progress, nil
}

func (r *progressRepository) MergeFlags(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags, updatedAt time.Time) (*entity.DailyProgress, error) {
	// Each flag is bound twice: once for a fresh row, once for the merge.
	// NULL keeps the stored value.
	query := `
		INSERT INTO daily_progress (
			user_id, date, breakfast, lunch, dinner, snack, shopping, updated_at
		) VALUES (
			?, ?,
			COALESCE(?, 0), COALESCE(?, 0), COALESCE(?, 0), COALESCE(?, 0), COALESCE(?, 0),
			?
		)
		ON CONFLICT (user_id, date) DO UPDATE SET
			breakfast = COALESCE(?, breakfast),
			lunch = COALESCE(?, lunch),
			dinner = COALESCE(?, dinner),
			snack = COALESCE(?, snack),
			shopping = COALESCE(?, shopping),
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		userID, date,
		flags.Breakfast, flags.Lunch, flags.Dinner, flags.Snack, flags.Shopping,
		updatedAt.UTC(),
		flags.Breakfast, flags.Lunch, flags.Dinner, flags.Snack, flags.Shopping,
	)
	if err != nil {
		return nil, storeError("save daily progress", err)
	}

	return r.GetByDate(ctx, userID, date)
}

func (r *progressRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.DailyProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE user_id = ? ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("list daily progress", err)
	}
	defer rows.Close()

	var records []*entity.DailyProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, storeError("scan daily progress", err)
		}
		records = append(records, progress)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterate daily progress", err)
	}

	return records, nil
}
