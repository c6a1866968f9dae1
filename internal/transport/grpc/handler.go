package grpc

import (
	"context"

	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/domain/service"

	"google.golang.org/protobuf/types/known/structpb"
)

type MealPlanServiceHandler struct {
	planService     service.PlanService
	progressService service.ProgressService
}

func NewMealPlanServiceHandler(planService service.PlanService, progressService service.ProgressService) *MealPlanServiceHandler {
	return &MealPlanServiceHandler{
		planService:     planService,
		progressService: progressService,
	}
}

// planResponse wraps a possibly absent plan
func planResponse(plan *entity.MealPlan) (*structpb.Struct, error) {
	if plan == nil {
		return toStruct(map[string]interface{}{"plan": nil})
	}
	return toStruct(map[string]interface{}{"plan": planToMap(plan)})
}

// Plan RPCs

func (h *MealPlanServiceHandler) ResolveCurrentPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	today, err := requiredString(req, "today")
	if err != nil {
		return nil, err
	}

	plan, err := h.planService.ResolveAndPersistCurrentPlan(ctx, userID, today)
	if err != nil {
		return nil, toStatus(err)
	}

	return planResponse(plan)
}

func (h *MealPlanServiceHandler) HandleForeground(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	plan, err := h.planService.HandleForeground(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	return planResponse(plan)
}

func (h *MealPlanServiceHandler) CreateSequencedPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	name, err := optionalString(req, "name")
	if err != nil {
		return nil, err
	}

	spanDays, err := optionalInt(req, "span_days")
	if err != nil {
		return nil, err
	}

	slots, err := slotsField(req, "slots")
	if err != nil {
		return nil, err
	}

	planName := ""
	if name != nil {
		planName = *name
	}

	plan, err := h.planService.CreateSequencedPlan(ctx, userID, planName, spanDays, slots)
	if err != nil {
		return nil, toStatus(err)
	}

	return planResponse(plan)
}

func (h *MealPlanServiceHandler) AddRecipeToPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := optionalUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	slot, err := slotField(req, "slot")
	if err != nil {
		return nil, err
	}

	plan, added, err := h.planService.AddRecipeToPlan(ctx, userID, planID, slot)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{
		"plan": planToMap(plan),
		"slot": slotToMap(added),
	})
}

func (h *MealPlanServiceHandler) ProjectSlotsForDate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	date, err := requiredString(req, "date")
	if err != nil {
		return nil, err
	}

	slots, err := h.planService.ProjectSlotsForDate(ctx, userID, date)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]interface{}, 0, len(slots))
	for _, slot := range slots {
		items = append(items, slotToMap(slot))
	}

	return toStruct(map[string]interface{}{"date": date, "slots": items})
}

func (h *MealPlanServiceHandler) ToggleSlotCooked(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	slotID, err := requiredUUID(req, "slot_id")
	if err != nil {
		return nil, err
	}

	slot, err := h.planService.ToggleSlotCooked(ctx, planID, slotID)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"slot": slotToMap(slot)})
}

func (h *MealPlanServiceHandler) PinPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	plan, err := h.planService.PinPlan(ctx, userID, planID)
	if err != nil {
		return nil, toStatus(err)
	}

	return planResponse(plan)
}

func (h *MealPlanServiceHandler) ListPlans(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	overviews, err := h.planService.ListPlans(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]interface{}, 0, len(overviews))
	for _, overview := range overviews {
		items = append(items, overviewToMap(overview))
	}

	return toStruct(map[string]interface{}{"plans": items, "total_count": len(items)})
}

func (h *MealPlanServiceHandler) GetPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	overview, err := h.planService.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(overviewToMap(overview))
}

func (h *MealPlanServiceHandler) UpdatePlanDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	var update entity.PlanUpdate
	if update.Name, err = optionalString(req, "name"); err != nil {
		return nil, err
	}
	if update.IsFavorite, err = optionalBool(req, "is_favorite"); err != nil {
		return nil, err
	}
	if update.StartDate, err = optionalString(req, "start_date"); err != nil {
		return nil, err
	}
	if update.EndDate, err = optionalString(req, "end_date"); err != nil {
		return nil, err
	}

	plan, err := h.planService.UpdatePlanDetails(ctx, userID, planID, update)
	if err != nil {
		return nil, toStatus(err)
	}

	return planResponse(plan)
}

func (h *MealPlanServiceHandler) ArchivePlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	if err := h.planService.ArchivePlan(ctx, userID, planID); err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"success": true})
}

func (h *MealPlanServiceHandler) DeletePlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	planID, err := requiredUUID(req, "plan_id")
	if err != nil {
		return nil, err
	}

	if err := h.planService.DeletePlan(ctx, userID, planID); err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"success": true})
}

// Progress RPCs

func (h *MealPlanServiceHandler) RecordDailyCompletion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	date, err := requiredString(req, "date")
	if err != nil {
		return nil, err
	}

	var flags entity.CompletionFlags
	for key, dst := range map[string]**bool{
		"breakfast": &flags.Breakfast,
		"lunch":     &flags.Lunch,
		"dinner":    &flags.Dinner,
		"snack":     &flags.Snack,
		"shopping":  &flags.Shopping,
	} {
		if *dst, err = optionalBool(req, key); err != nil {
			return nil, err
		}
	}

	progress, err := h.progressService.RecordDailyCompletion(ctx, userID, date, flags)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"progress": progressToMap(progress)})
}

func (h *MealPlanServiceHandler) GetDailyProgress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	date, err := requiredString(req, "date")
	if err != nil {
		return nil, err
	}

	progress, err := h.progressService.GetDailyProgress(ctx, userID, date)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{"progress": progressToMap(progress)})
}

func (h *MealPlanServiceHandler) ComputeStreaks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requiredUUID(req, "user_id")
	if err != nil {
		return nil, err
	}

	streaks, err := h.progressService.ComputeStreaks(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{
		"current_streak": streaks.Current,
		"longest_streak": streaks.Longest,
	})
}
