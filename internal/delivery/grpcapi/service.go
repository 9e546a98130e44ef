package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "kol.payout.v1.PayoutService"

// PayoutServiceServer is the structpb contract of kol.payout.v1.PayoutService.
type PayoutServiceServer interface {
	GetEligiblePayouts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GeneratePayouts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePayoutStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPayouts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPayoutDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(context.Context, *structpb.Struct) (*structpb.Struct, error)

func Register(server grpc.ServiceRegistrar, svc PayoutServiceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*PayoutServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetEligiblePayouts", Handler: unaryHandler("GetEligiblePayouts", svc.GetEligiblePayouts)},
			{MethodName: "GeneratePayouts", Handler: unaryHandler("GeneratePayouts", svc.GeneratePayouts)},
			{MethodName: "UpdatePayoutStatus", Handler: unaryHandler("UpdatePayoutStatus", svc.UpdatePayoutStatus)},
			{MethodName: "ListPayouts", Handler: unaryHandler("ListPayouts", svc.ListPayouts)},
			{MethodName: "GetPayoutDetails", Handler: unaryHandler("GetPayoutDetails", svc.GetPayoutDetails)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "kol/payout/v1/payout_service.proto",
	}, svc)
}

func unaryHandler(method string, fn unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return fn(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
