package grpc

import (
	"math"
	"time"

	"mealplan-service/internal/domain/entity"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Responses are google.protobuf.Struct documents; these helpers build their
// fields from domain types. structpb only accepts []interface{} for lists.

func planToMap(plan *entity.MealPlan) map[string]interface{} {
	if plan == nil {
		return nil
	}

	slots := make([]interface{}, 0, len(plan.Slots))
	for _, slot := range plan.Slots {
		slots = append(slots, slotToMap(slot))
	}

	return map[string]interface{}{
		"id":          plan.ID.String(),
		"user_id":     plan.UserID.String(),
		"name":        plan.Name,
		"is_favorite": plan.IsFavorite,
		"start_date":  plan.StartDate,
		"end_date":    plan.EndDate,
		"is_current":  plan.IsCurrent,
		"status":      string(plan.Status),
		"slots":       slots,
		"created_at":  plan.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func slotToMap(slot *entity.RecipeSlot) map[string]interface{} {
	return map[string]interface{}{
		"id":          slot.ID.String(),
		"plan_id":     slot.PlanID.String(),
		"recipe_id":   slot.RecipeID,
		"recipe_name": slot.RecipeName,
		"day_index":   slot.DayIndex,
		"meal_type":   string(slot.MealType),
		"is_cooked":   slot.IsCooked,
	}
}

func overviewToMap(overview *entity.PlanOverview) map[string]interface{} {
	return map[string]interface{}{
		"plan":           planToMap(overview.Plan),
		"timing":         string(overview.Timing),
		"is_next":        overview.IsNext,
		"effective_span": overview.EffectiveSpan,
	}
}

func progressToMap(progress *entity.DailyProgress) map[string]interface{} {
	return map[string]interface{}{
		"user_id":   progress.UserID.String(),
		"date":      progress.Date,
		"breakfast": progress.Breakfast,
		"lunch":     progress.Lunch,
		"dinner":    progress.Dinner,
		"snack":     progress.Snack,
		"shopping":  progress.Shopping,
	}
}

func toStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

// Request field readers. Absent and null fields read as unset.

func field(req *structpb.Struct, key string) *structpb.Value {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	return v
}

func optionalString(req *structpb.Struct, key string) (*string, error) {
	v := field(req, key)
	if v == nil {
		return nil, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return &s.StringValue, nil
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	s, err := optionalString(req, key)
	if err != nil {
		return "", err
	}
	if s == nil || *s == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return *s, nil
}

func requiredUUID(req *structpb.Struct, key string) (uuid.UUID, error) {
	s, err := requiredString(req, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s", key)
	}
	return id, nil
}

func optionalUUID(req *structpb.Struct, key string) (*uuid.UUID, error) {
	s, err := optionalString(req, key)
	if err != nil || s == nil || *s == "" {
		return nil, err
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s", key)
	}
	return &id, nil
}

func optionalBool(req *structpb.Struct, key string) (*bool, error) {
	v := field(req, key)
	if v == nil {
		return nil, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a boolean", key)
	}
	return &b.BoolValue, nil
}

func optionalInt(req *structpb.Struct, key string) (int, error) {
	v := field(req, key)
	if v == nil {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}

func slotFromStruct(s *structpb.Struct) (*entity.RecipeSlot, error) {
	recipeID, err := requiredString(s, "recipe_id")
	if err != nil {
		return nil, err
	}

	recipeName, err := optionalString(s, "recipe_name")
	if err != nil {
		return nil, err
	}

	dayIndex, err := optionalInt(s, "day_index")
	if err != nil {
		return nil, err
	}

	mealType, err := requiredString(s, "meal_type")
	if err != nil {
		return nil, err
	}

	slot := &entity.RecipeSlot{
		RecipeID: recipeID,
		DayIndex: dayIndex,
		MealType: entity.MealType(mealType),
	}
	if recipeName != nil {
		slot.RecipeName = *recipeName
	}

	return slot, nil
}

func slotField(req *structpb.Struct, key string) (*entity.RecipeSlot, error) {
	v := field(req, key)
	if v == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be an object", key)
	}
	return slotFromStruct(s)
}

func slotsField(req *structpb.Struct, key string) ([]*entity.RecipeSlot, error) {
	v := field(req, key)
	if v == nil {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list", key)
	}

	slots := make([]*entity.RecipeSlot, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		s := item.GetStructValue()
		if s == nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s[%d] must be an object", key, i)
		}
		slot, err := slotFromStruct(s)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
