package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "device.DeviceManagement"

// Method names.
const (
	MethodRegisterDevice        = "RegisterDevice"
	MethodSetDeviceStatus       = "SetDeviceStatus"
	MethodGetDeviceInfo         = "GetDeviceInfo"
	MethodInitiateDeviceAction  = "InitiateDeviceAction"
	MethodGetDeviceActionStatus = "GetDeviceActionStatus"
)

// DeviceManagementServer is the set of operations served over gRPC.
// *fleet.Service implements it, and so does *Client.
type DeviceManagementServer interface {
	RegisterDevice(ctx context.Context, req fleet.RegisterDeviceRequest) (fleet.RegisterDeviceResponse, error)
	SetDeviceStatus(ctx context.Context, req fleet.SetDeviceStatusRequest) (fleet.SetDeviceStatusResponse, error)
	GetDeviceInfo(ctx context.Context, req fleet.GetDeviceInfoRequest) (fleet.GetDeviceInfoResponse, error)
	InitiateDeviceAction(ctx context.Context, req fleet.InitiateDeviceActionRequest) (fleet.InitiateDeviceActionResponse, error)
	GetDeviceActionStatus(ctx context.Context, req fleet.GetDeviceActionStatusRequest) (fleet.GetDeviceActionStatusResponse, error)
}

var (
	_ DeviceManagementServer = (*fleet.Service)(nil)
	_ DeviceManagementServer = (*Client)(nil)
)

// fullMethod returns the gRPC path for a method, e.g.
// "/device.DeviceManagement/RegisterDevice".
func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// unary builds a method handler that decodes Req, runs the interceptor
// chain, and dispatches to call.
func unary[Req, Resp any](method string, call func(DeviceManagementServer, context.Context, Req) (Resp, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(DeviceManagementServer)
		if interceptor == nil {
			return call(impl, ctx, *in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(impl, ctx, *req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// serviceDesc describes DeviceManagement to grpc.Server.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeviceManagementServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodRegisterDevice,
			Handler:    unary(MethodRegisterDevice, DeviceManagementServer.RegisterDevice),
		},
		{
			MethodName: MethodSetDeviceStatus,
			Handler:    unary(MethodSetDeviceStatus, DeviceManagementServer.SetDeviceStatus),
		},
		{
			MethodName: MethodGetDeviceInfo,
			Handler:    unary(MethodGetDeviceInfo, DeviceManagementServer.GetDeviceInfo),
		},
		{
			MethodName: MethodInitiateDeviceAction,
			Handler:    unary(MethodInitiateDeviceAction, DeviceManagementServer.InitiateDeviceAction),
		},
		{
			MethodName: MethodGetDeviceActionStatus,
			Handler:    unary(MethodGetDeviceActionStatus, DeviceManagementServer.GetDeviceActionStatus),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "device.proto",
}
