package postgres

import (
	"context"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const progressColumns = `
	user_id, to_char(date, 'YYYY-MM-DD'),
	breakfast, lunch, dinner, snack, shopping, updated_at
`

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new PostgreSQL daily progress repository
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{pool: pool}
}

func scanProgress(row pgx.Row) (*entity.DailyProgress, error) {
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
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE user_id = $1 AND date = $2`

	progress, err := scanProgress(r.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		return nil, storeError("get daily progress", err)
	}

	return progress, nil
}

func (r *progressRepository) MergeFlags(ctx context.Context, userID uuid.UUID, date string, flags entity.CompletionFlags, updatedAt time.Time) (*entity.DailyProgress, error) {
	// NULL flags keep the stored value; the row lock taken by ON CONFLICT
	// serializes concurrent merges for the same day.
	query := `
		INSERT INTO daily_progress (
			user_id, date, breakfast, lunch, dinner, snack, shopping, updated_at
		) VALUES (
			$1, $2,
			COALESCE($3::boolean, FALSE),
			COALESCE($4::boolean, FALSE),
			COALESCE($5::boolean, FALSE),
			COALESCE($6::boolean, FALSE),
			COALESCE($7::boolean, FALSE),
			$8
		)
		ON CONFLICT (user_id, date) DO UPDATE SET
			breakfast = COALESCE($3::boolean, daily_progress.breakfast),
			lunch = COALESCE($4::boolean, daily_progress.lunch),
			dinner = COALESCE($5::boolean, daily_progress.dinner),
			snack = COALESCE($6::boolean, daily_progress.snack),
			shopping = COALESCE($7::boolean, daily_progress.shopping),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + progressColumns

	progress, err := scanProgress(r.pool.QueryRow(ctx, query,
		userID, date,
		flags.Breakfast, flags.Lunch, flags.Dinner, flags.Snack, flags.Shopping,
		updatedAt,
	))
	if err != nil {
		return nil, storeError("save daily progress", err)
	}

	return progress, nil
}

func (r *progressRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.DailyProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM daily_progress WHERE user_id = $1 ORDER BY date ASC`

	rows, err := r.pool.Query(ctx, query, userID)
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
