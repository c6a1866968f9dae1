package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"mealplan-service/internal/config"
	"mealplan-service/internal/domain/entity"
	"mealplan-service/internal/infrastructure/db"
	"mealplan-service/internal/infrastructure/memory"
	"mealplan-service/internal/infrastructure/sqlite"
	"mealplan-service/internal/service"
	"mealplan-service/pkg/daterange"
	"mealplan-service/pkg/logger"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testToday = "2024-03-01"

// startTestServer serves a handler backed by SQLite over an in-memory listener
func startTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mealplan.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	log := logger.Nop()
	planService := service.NewPlanService(
		sqlite.NewPlanRepository(conn),
		memory.NewCursorStore(),
		daterange.FixedClock(testToday),
		7,
		log,
	)
	progressService := service.NewProgressService(sqlite.NewProgressRepository(conn), nil, 0, log)

	server := NewServer(NewMealPlanServiceHandler(planService, progressService), &config.GRPCConfig{Port: 50053}, log)

	lis := bufconn.Listen(1 << 20)
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	client, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func call(t *testing.T, conn *grpc.ClientConn, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()

	req, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatal(err)
	}

	resp := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+ServiceName+"/"+method, req, resp)
	return resp, err
}

func mustCall(t *testing.T, conn *grpc.ClientConn, method string, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	resp, err := call(t, conn, method, fields)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return resp
}

func TestMealPlanServiceFlow(t *testing.T) {
	conn := startTestServer(t)
	userID := uuid.NewString()

	created := mustCall(t, conn, "CreateSequencedPlan", map[string]interface{}{
		"user_id": userID,
		"name":    "Spring week",
		"slots": []interface{}{
			map[string]interface{}{"recipe_id": "r1", "recipe_name": "Soup", "day_index": 0, "meal_type": "dinner"},
			map[string]interface{}{"recipe_id": "r2", "day_index": 2, "meal_type": "Lunch"},
		},
	})

	plan := created.Fields["plan"].GetStructValue()
	if plan == nil {
		t.Fatal("response has no plan")
	}
	if got := plan.Fields["start_date"].GetStringValue(); got != testToday {
		t.Errorf("start_date = %q, want %q", got, testToday)
	}
	if got := plan.Fields["end_date"].GetStringValue(); got != "2024-03-03" {
		t.Errorf("end_date = %q, want 2024-03-03", got)
	}
	if !plan.Fields["is_current"].GetBoolValue() {
		t.Error("first plan should become current")
	}
	planID := plan.Fields["id"].GetStringValue()

	listed := mustCall(t, conn, "ListPlans", map[string]interface{}{"user_id": userID})
	items := listed.Fields["plans"].GetListValue().GetValues()
	if len(items) != 1 {
		t.Fatalf("listed %d plans, want 1", len(items))
	}
	overview := items[0].GetStructValue()
	if got := overview.Fields["timing"].GetStringValue(); got != string(entity.PlanTimingCurrent) {
		t.Errorf("timing = %q", got)
	}
	if got := overview.Fields["effective_span"].GetNumberValue(); got != 3 {
		t.Errorf("effective_span = %v, want 3", got)
	}

	projected := mustCall(t, conn, "ProjectSlotsForDate", map[string]interface{}{"user_id": userID, "date": "2024-03-03"})
	slots := projected.Fields["slots"].GetListValue().GetValues()
	if len(slots) != 1 {
		t.Fatalf("projected %d slots, want 1", len(slots))
	}
	slot := slots[0].GetStructValue()
	if got := slot.Fields["meal_type"].GetStringValue(); got != "lunch" {
		t.Errorf("meal_type = %q, want lunch", got)
	}

	toggled := mustCall(t, conn, "ToggleSlotCooked", map[string]interface{}{
		"plan_id": planID,
		"slot_id": slot.Fields["id"].GetStringValue(),
	})
	if !toggled.Fields["slot"].GetStructValue().Fields["is_cooked"].GetBoolValue() {
		t.Error("slot not marked cooked")
	}

	recorded := mustCall(t, conn, "RecordDailyCompletion", map[string]interface{}{
		"user_id": userID,
		"date":    testToday,
		"dinner":  true,
	})
	if !recorded.Fields["progress"].GetStructValue().Fields["dinner"].GetBoolValue() {
		t.Error("dinner not recorded")
	}

	streaks := mustCall(t, conn, "ComputeStreaks", map[string]interface{}{"user_id": userID})
	if streaks.Fields["current_streak"].GetNumberValue() != 1 || streaks.Fields["longest_streak"].GetNumberValue() != 1 {
		t.Errorf("streaks = %v", streaks.AsMap())
	}

	mustCall(t, conn, "ArchivePlan", map[string]interface{}{"user_id": userID, "plan_id": planID})

	resolved := mustCall(t, conn, "ResolveCurrentPlan", map[string]interface{}{"user_id": userID, "today": testToday})
	if _, isNull := resolved.Fields["plan"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Errorf("plan = %v, want null after archiving the only plan", resolved.Fields["plan"])
	}
}

func TestMealPlanServiceErrors(t *testing.T) {
	conn := startTestServer(t)
	userID := uuid.NewString()

	tests := []struct {
		name   string
		method string
		fields map[string]interface{}
		want   codes.Code
	}{
		{"malformed user id", "ListPlans", map[string]interface{}{"user_id": "nope"}, codes.InvalidArgument},
		{"missing today", "ResolveCurrentPlan", map[string]interface{}{"user_id": userID}, codes.InvalidArgument},
		{"bad date", "ResolveCurrentPlan", map[string]interface{}{"user_id": userID, "today": "2024-02-30"}, codes.InvalidArgument},
		{"unknown plan", "GetPlan", map[string]interface{}{"user_id": userID, "plan_id": uuid.NewString()}, codes.NotFound},
		{"unknown meal type", "AddRecipeToPlan", map[string]interface{}{
			"user_id": userID,
			"slot":    map[string]interface{}{"recipe_id": "r1", "meal_type": "brunch"},
		}, codes.InvalidArgument},
		{"flag of wrong type", "RecordDailyCompletion", map[string]interface{}{
			"user_id": userID, "date": testToday, "lunch": "yes",
		}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, conn, tt.method, tt.fields)
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %s, want %s (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("x: %w", entity.ErrInvalidArgument), codes.InvalidArgument},
		{fmt.Errorf("x: %w", entity.ErrNotFound), codes.NotFound},
		{fmt.Errorf("x: %w", entity.ErrInvariantViolation), codes.FailedPrecondition},
		{fmt.Errorf("x: %w: %w", entity.ErrTransientStore, errors.New("conn reset")), codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.PermissionDenied, "no"), codes.PermissionDenied},
	}

	for _, tt := range tests {
		if got := status.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
