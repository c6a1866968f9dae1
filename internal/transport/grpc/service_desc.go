package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "mealplan.v1.MealPlanService"

// MealPlanServer is the server API for mealplan.v1.MealPlanService
type MealPlanServer interface {
	ResolveCurrentPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HandleForeground(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSequencedPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddRecipeToPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProjectSlotsForDate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleSlotCooked(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PinPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPlans(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePlanDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ArchivePlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordDailyCompletion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDailyProgress(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeStreaks(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MealPlanServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc's MethodHandler signature
func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MealPlanServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MealPlanServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var MealPlanServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MealPlanServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ResolveCurrentPlan", MealPlanServer.ResolveCurrentPlan),
		unaryHandler("HandleForeground", MealPlanServer.HandleForeground),
		unaryHandler("CreateSequencedPlan", MealPlanServer.CreateSequencedPlan),
		unaryHandler("AddRecipeToPlan", MealPlanServer.AddRecipeToPlan),
		unaryHandler("ProjectSlotsForDate", MealPlanServer.ProjectSlotsForDate),
		unaryHandler("ToggleSlotCooked", MealPlanServer.ToggleSlotCooked),
		unaryHandler("PinPlan", MealPlanServer.PinPlan),
		unaryHandler("ListPlans", MealPlanServer.ListPlans),
		unaryHandler("GetPlan", MealPlanServer.GetPlan),
		unaryHandler("UpdatePlanDetails", MealPlanServer.UpdatePlanDetails),
		unaryHandler("ArchivePlan", MealPlanServer.ArchivePlan),
		unaryHandler("DeletePlan", MealPlanServer.DeletePlan),
		unaryHandler("RecordDailyCompletion", MealPlanServer.RecordDailyCompletion),
		unaryHandler("GetDailyProgress", MealPlanServer.GetDailyProgress),
		unaryHandler("ComputeStreaks", MealPlanServer.ComputeStreaks),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mealplan/v1/mealplan.proto",
}

// RegisterMealPlanServer registers srv on s
func RegisterMealPlanServer(s grpc.ServiceRegistrar, srv MealPlanServer) {
	s.RegisterService(&MealPlanServiceDesc, srv)
}
