// Package grpcapi содержит внутренний операционный API движка: запуск свипера,
// расчёты по выплатам и возвратам, кошелёк хоста. Сообщения имеют тип
// google.protobuf.Struct, поэтому обходится без сгенерированного кода.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "travelbooking.ops.v1.OperationsService"

type OperationsServer interface {
	RunOverdueSweep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendPaymentReminders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SettlePayout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FailPayout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RetryPayout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBookingPayouts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmRefund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HostWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(OperationsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OperationsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(OperationsServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OperationsServer)(nil),
	Methods: []grpc.MethodDesc{
		handler("RunOverdueSweep", OperationsServer.RunOverdueSweep),
		handler("SendPaymentReminders", OperationsServer.SendPaymentReminders),
		handler("SettlePayout", OperationsServer.SettlePayout),
		handler("FailPayout", OperationsServer.FailPayout),
		handler("RetryPayout", OperationsServer.RetryPayout),
		handler("ListBookingPayouts", OperationsServer.ListBookingPayouts),
		handler("ConfirmRefund", OperationsServer.ConfirmRefund),
		handler("HostWallet", OperationsServer.HostWallet),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterOperationsServer(s grpc.ServiceRegistrar, srv OperationsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Invoke вызывает метод сервиса по имени.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
