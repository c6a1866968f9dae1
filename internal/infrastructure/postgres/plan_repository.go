package postgres

import (
	"context"
	"fmt"
	"time"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const planColumns = `
	id, user_id, name, is_favorite,
	COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
	COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
	is_current, status, created_at, updated_at
`

const slotColumns = `
	s.id, s.plan_id, s.recipe_id, s.recipe_name, s.day_index, s.meal_type, s.is_cooked, s.created_at
`

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PostgreSQL meal plan repository
func NewPlanRepository(pool *pgxpool.Pool) repository.PlanRepository {
	return &planRepository{pool: pool}
}

func scanPlan(row pgx.Row) (*entity.MealPlan, error) {
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

func scanSlot(row pgx.Row) (*entity.RecipeSlot, error) {
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
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		plan.ID, plan.UserID, plan.Name, plan.IsFavorite,
		nullDate(plan.StartDate), nullDate(plan.EndDate), plan.IsCurrent, string(plan.Status),
		plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return storeError("create meal plan", err)
	}

	return nil
}

func (r *planRepository) GetByID(ctx context.Context, planID uuid.UUID) (*entity.MealPlan, error) {
	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE id = $1`

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, planID))
	if err != nil {
		return nil, storeError("get meal plan", err)
	}

	return r.withSlots(ctx, plan)
}

func (r *planRepository) GetByIDAndUserID(ctx context.Context, planID, userID uuid.UUID) (*entity.MealPlan, error) {
	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE id = $1 AND user_id = $2`

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, planID, userID))
	if err != nil {
		return nil, storeError("get meal plan", err)
	}

	return r.withSlots(ctx, plan)
}

func (r *planRepository) withSlots(ctx context.Context, plan *entity.MealPlan) (*entity.MealPlan, error) {
	query := `SELECT ` + slotColumns + ` FROM recipe_slots s WHERE s.plan_id = $1 ORDER BY s.day_index, s.created_at`

	rows, err := r.pool.Query(ctx, query, plan.ID)
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

	query := `SELECT ` + planColumns + ` FROM meal_plans WHERE user_id = $1` + filter +
		` ORDER BY start_date NULLS LAST, created_at`

	rows, err := r.pool.Query(ctx, query, userID)
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

	if len(plans) == 0 {
		return plans, nil
	}

	slotQuery := `
		SELECT ` + slotColumns + `
		FROM recipe_slots s
		JOIN meal_plans p ON p.id = s.plan_id
		WHERE p.user_id = $1` + filter + `
		ORDER BY s.day_index, s.created_at
	`

	slotRows, err := r.pool.Query(ctx, slotQuery, userID)
	if err != nil {
		return nil, storeError("list recipe slots", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		slot, err := scanSlot(slotRows)
		if err != nil {
			return nil, storeError("scan recipe slot", err)
		}
		// Plans created between the two reads are not in the map.
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
			name = $1,
			is_favorite = $2,
			start_date = $3,
			end_date = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		plan.Name, plan.IsFavorite,
		nullDate(plan.StartDate), nullDate(plan.EndDate),
		time.Now().UTC(), plan.ID,
	)
	if err != nil {
		return storeError("update meal plan", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("meal plan %s: %w", plan.ID, entity.ErrNotFound)
	}

	return nil
}

func (r *planRepository) Archive(ctx context.Context, planID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			status = 'archived',
			is_current = FALSE,
			updated_at = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), planID)
	if err != nil {
		return storeError("archive meal plan", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("meal plan %s: %w", planID, entity.ErrNotFound)
	}

	return nil
}

func (r *planRepository) Delete(ctx context.Context, planID uuid.UUID) error {
	// Slots go with the plan through ON DELETE CASCADE.
	result, err := r.pool.Exec(ctx, `DELETE FROM meal_plans WHERE id = $1`, planID)
	if err != nil {
		return storeError("delete meal plan", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("meal plan %s: %w", planID, entity.ErrNotFound)
	}

	return nil
}

func (r *planRepository) ClearCurrent(ctx context.Context, userID, keepID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			is_current = FALSE,
			updated_at = $1
		WHERE user_id = $2
		  AND id <> $3
		  AND is_current = TRUE
	`

	if _, err := r.pool.Exec(ctx, query, time.Now().UTC(), userID, keepID); err != nil {
		return storeError("clear current meal plan", err)
	}

	return nil
}

func (r *planRepository) SetCurrent(ctx context.Context, planID uuid.UUID) error {
	query := `
		UPDATE meal_plans SET
			is_current = TRUE,
			updated_at = $1
		WHERE id = $2
		  AND status = 'active'
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), planID)
	if err != nil {
		return storeError("set current meal plan", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("active meal plan %s: %w", planID, entity.ErrNotFound)
	}

	return nil
}

func (r *planRepository) ListUserIDsWithActivePlans(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM meal_plans WHERE status = 'active'`)
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
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		slot.ID, slot.PlanID, slot.RecipeID, slot.RecipeName,
		slot.DayIndex, string(slot.MealType), slot.IsCooked, slot.CreatedAt,
	)
	if err != nil {
		return storeError("add recipe slot", err)
	}

	return nil
}

func (r *planRepository) GetSlot(ctx context.Context, planID, slotID uuid.UUID) (*entity.RecipeSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM recipe_slots s WHERE s.id = $1 AND s.plan_id = $2`

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, slotID, planID))
	if err != nil {
		return nil, storeError("get recipe slot", err)
	}

	return slot, nil
}

func (r *planRepository) SetSlotCooked(ctx context.Context, planID, slotID uuid.UUID, cooked bool) error {
	query := `UPDATE recipe_slots SET is_cooked = $1 WHERE id = $2 AND plan_id = $3`

	result, err := r.pool.Exec(ctx, query, cooked, slotID, planID)
	if err != nil {
		return storeError("update recipe slot", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("recipe slot %s: %w", slotID, entity.ErrNotFound)
	}

	return nil
}
