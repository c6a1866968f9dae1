package sqlite

import (
	"context"
	"database/sql"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/google/uuid"
)

const planColumns = `
	id, user_id, name, is_favorite,
	COALESCE(start_date, ''), COALESCE(end_date, ''),
	is_current, status, created_at, updated_at
`

const slotColumns = `
	s.id, s.plan_id, s.recipe_id, s.recipe_name, s.day_index, s.meal_type, s.is_cooked, s.created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a SQLite-backed meal plan repository
func NewPlanRepository(db *sql.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func scanPlan(row rowScanner) (*entity.MealPlan, error) {
	plan := &entity.MealPlan{}
	err := row.Scan(
		&plan.ID, &plan.UserID, &plan.Name, &plan.IsFavorite,
		&plan.StartDate, &plan.EndDate,
		&plan.IsCurrent, &plan.Status, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func scanSlot(row rowScanner) (*entity.RecipeSlot, error) {
	slot := &entity.RecipeSlot{}
	err := row.Scan(
		&slot.ID, &slot.PlanID, &slot.RecipeID, &slot.RecipeName,
		&slot.DayIndex, &slot.MealType, &slot.IsCooked, &slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *planRepository) Create(ctx context.Context, plan *entity.MealPlan) error {
	query := `
		INSERT INTO meal_plans (
			id, user_id, name, is_favorite,
			start_date, end_date, is_current, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.UserID, plan.Name, plan.IsFavorite,
		nullDate(plan.StartDate), nullDate(plan.EndDate), plan.IsCurrent, string(plan.Status),
		plan.CreatedAt.UTC(), plan.UpdatedAt.UTC(),
	)
	if err != nil {
		return storeError("create meal plan", err)
	}

	return nil
}

func (r *planRepository) GetByID(ctx context.Context, planID uuid.UUID) (*entity.MealPlan, error) {
	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE id = ?`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, planID))
	if err != nil {
		return nil, storeError("get meal plan", err)
	}

	return r.withSlots(ctx, plan)
}

func (r *planRepository) GetByIDAndUserID(ctx context.Context, planID, userID uuid.UUID) (*entity.MealPlan, error) {
	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE id = ? AND user_id = ?`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, planID, userID))
	if err != nil {
		return nil, storeError("get meal plan", err)
	}

	return r.withSlots(ctx, plan)
}

func (r *planRepository) withSlots(ctx context.Context, plan *entity.MealPlan) (*entity.MealPlan, error) {
	query := `SELECT ` + slotColumns + ` FROM recipe_slots s WHERE s.plan_id = ? ORDER BY s.day_index, s.created_at`

	rows, err := r.db.QueryContext(ctx, query, plan.ID)
	if err != nil {
		return nil, storeError("get recipe slots", err)
	}
	defer rows.Close()

	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, storeError("scan recipe slot", err)
		}
		plan.Slots = append(plan.Slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterate recipe slots", err)
	}

	return plan, nil
}

func (r *planRepository) ListByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.MealPlan, error) {
	filter := ""
	if activeOnly {
		filter = " AND status = 'active'"
	}

	// SQLite sorts NULL first, so undated plans are pushed to the end explicitly.
	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE user_id = ?` + filter +
		` ORDER BY start_date IS NULL, start_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("list meal plans", err)
	}
	defer rows.Close()

	var plans []*entity.MealPlan
	byID := make(map[uuid.UUID]*entity.MealPlan)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, storeError("scan meal plan", err)
		}
		plans = append(plans, plan)
		byID[plan.ID] = plan
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterate meal plans", err)
	}
	rows.Close()

	if len(plans) == 0 {
		return plans, nil
	}

	slotQuery := `
		SELECT ` + slotColumns + `
		FROM recipe_slots s
		JOIN meal_plans p ON p.id = s.plan_id
		WHERE p.user_id = ?` + filter + `
		ORDER BY s.day_index, s.created_at
	`

	slotRows, err := r.db.QueryContext(ctx, slotQuery, userID)
	if err != nil {
		return nil, storeError("list recipe slots", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		slot, err := scanSlot(slotRows)
		if err != nil {
			return nil, storeError("scan recipe slot", err)
		}
		if plan, ok := byID[slot.PlanID]; ok {
			plan.Slots = append(plan.Slots, slot)
		}
	}

	if err := slotRows.Err(); err != nil {
		return nil, storeError("iterate recipe slots", err)
	}

	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, plan *entity.MealPlan) error {
	query := `
		UPDATE meal_plans SET
			name = ?,
			is_favorite = ?,
			start_date = ?,
			end_date = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		plan.Name, plan.IsFavorite,
		nullDate(plan.StartDate), nullDate(plan.EndDate),
		time.Now().UTC(), plan.ID,
	)
	if err != nil {
		return storeError("update meal plan", err)
	}

	return notFound("meal plan", plan.ID, result)
}

func (r *planRepository) Archive(ctx context.Context, planID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			status = 'archived',
			is_current = 0,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), planID)
	if err != nil {
		return storeError("archive meal plan", err)
	}

	return notFound("meal plan", planID, result)
}

func (r *planRepository) Delete(ctx context.Context, planID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, planID)
	if err != nil {
		return storeError("delete meal plan", err)
	}

	return notFound("meal plan", planID, result)
}

func (r *planRepository) ClearCurrent(ctx context.Context, userID, keepID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			is_current = 0,
			updated_at = ?
		WHERE user_id = ?
		  AND id <> ?
		  AND is_current = 1
	`

	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID, keepID); err != nil {
		return storeError("clear current meal plan", err)
	}

	return nil
}

func (r *planRepository) SetCurrent(ctx context.Context, planID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			is_current = 1,
			updated_at = ?
		WHERE id = ?
		  AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), planID)
	if err != nil {
		return storeError("set current meal plan", err)
	}

	return notFound("active meal plan", planID, result)
}

func (r *planRepository) ListUserIDsWithActivePlans(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM meal_plans WHERE status = 'active'`)
	if err != nil {
		return nil, storeError("list users with active plans", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, storeError("scan user id", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterate user ids", err)
	}

	return userIDs, nil
}

func (r *planRepository) AddSlot(ctx context.Context, slot *entity.RecipeSlot) error {
	query := `
		INSERT INTO recipe_slots (
			id, plan_id, recipe_id, recipe_name, day_index, meal_type, is_cooked, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		slot.ID, slot.PlanID, slot.RecipeID, slot.RecipeName,
		slot.DayIndex, string(slot.MealType), slot.IsCooked, slot.CreatedAt.UTC(),
	)
	if err != nil {
		return storeError("add recipe slot", err)
	}

	return nil
}

func (r *planRepository) GetSlot(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM recipe_slots s WHERE s.id = ? AND s.plan_id = ?`

	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, slotID, planID))
	if err != nil {
		return nil, storeError("get recipe slot", err)
	}

	return slot, nil
}

func (r *planRepository) SetSlotCooked(ctx context.Context, planID, slotID uuid.UUID, cooked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE recipe_slots SET is_cooked = ? WHERE id = ? AND plan_id = ?`,
		cooked, slotID, planID,
	)
	if err != nil {
		return storeError("update recipe slot", err)
	}

	return notFound("recipe slot", slotID, result)
}
