package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The factory service is described by hand: requests and replies are
// well-known protobuf types, so no generated stubs are needed.
const (
	serviceName = "factory.v1.FactoryService"

	methodPlaceOrder   = "/" + serviceName + "/PlaceOrder"
	methodGetJob       = "/" + serviceName + "/GetJob"
	methodStatus       = "/" + serviceName + "/Status"
	methodExportRoster = "/" + serviceName + "/ExportRoster"
	methodShutdown     = "/" + serviceName + "/Shutdown"
)

// FactoryServiceServer is the daemon-side contract
type FactoryServiceServer interface {
	// PlaceOrder takes {furniture, material, quantity} and returns {order_id, total_price}
	PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// GetJob takes {order_id} and returns the job state
	GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Status returns the factory snapshot
	Status(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// ExportRoster takes {format} and returns {format, document}
	ExportRoster(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Shutdown asks the daemon to stop gracefully
	Shutdown(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterFactoryServiceServer registers srv on s
func RegisterFactoryServiceServer(s grpc.ServiceRegistrar, srv FactoryServiceServer) {
	s.RegisterService(&factoryServiceDesc, srv)
}

var factoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FactoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PlaceOrder",
			Handler: unaryHandler(methodPlaceOrder, func(srv FactoryServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return srv.PlaceOrder(ctx, in)
			}),
		},
		{
			MethodName: "GetJob",
			Handler: unaryHandler(methodGetJob, func(srv FactoryServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return srv.GetJob(ctx, in)
			}),
		},
		{
			MethodName: "Status",
			Handler: unaryHandler(methodStatus, func(srv FactoryServiceServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
				return srv.Status(ctx, in)
			}),
		},
		{
			MethodName: "ExportRoster",
			Handler: unaryHandler(methodExportRoster, func(srv FactoryServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return srv.ExportRoster(ctx, in)
			}),
		},
		{
			MethodName: "Shutdown",
			Handler: unaryHandler(methodShutdown, func(srv FactoryServiceServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
				return srv.Shutdown(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "factory/v1/factory.proto",
}

// unaryHandler adapts a typed call into a grpc.MethodHandler
func unaryHandler[Req any, PReq interface {
	*Req
}](fullMethod string, call func(FactoryServiceServer, context.Context, PReq) (interface{}, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(FactoryServiceServer)
		if interceptor == nil {
			return call(svc, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(svc, ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}
