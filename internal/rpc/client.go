package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// DefaultTarget is the address clients connect to when none is given.
const DefaultTarget = "localhost:50051"

// Client calls a DeviceManagement server.
//
// Not-found and invalid-argument replies are returned as errors wrapping
// the fleet sentinels (fleet.ErrDeviceNotFound, fleet.ErrActionNotFound,
// fleet.ErrInvalidArgument). Business failures come back as Success=false
// in the response, exactly as the server produced them.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient creates a client for target. The connection is plaintext and
// established lazily on the first call. Extra options are appended after
// the built-in ones.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	if target == "" {
		target = DefaultTarget
	}
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating gRPC client for %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return fromStatus(method, c.conn.Invoke(ctx, fullMethod(method), req, resp))
}

// RegisterDevice calls DeviceManagement.RegisterDevice.
func (c *Client) RegisterDevice(ctx context.Context, req fleet.RegisterDeviceRequest) (fleet.RegisterDeviceResponse, error) {
	var resp fleet.RegisterDeviceResponse
	err := c.invoke(ctx, MethodRegisterDevice, &req, &resp)
	return resp, err
}

// SetDeviceStatus calls DeviceManagement.SetDeviceStatus.
func (c *Client) SetDeviceStatus(ctx context.Context, req fleet.SetDeviceStatusRequest) (fleet.SetDeviceStatusResponse, error) {
	var resp fleet.SetDeviceStatusResponse
	err := c.invoke(ctx, MethodSetDeviceStatus, &req, &resp)
	return resp, err
}

// GetDeviceInfo calls DeviceManagement.GetDeviceInfo.
func (c *Client) GetDeviceInfo(ctx context.Context, req fleet.GetDeviceInfoRequest) (fleet.GetDeviceInfoResponse, error) {
	var resp fleet.GetDeviceInfoResponse
	err := c.invoke(ctx, MethodGetDeviceInfo, &req, &resp)
	return resp, err
}

// InitiateDeviceAction calls DeviceManagement.InitiateDeviceAction.
func (c *Client) InitiateDeviceAction(ctx context.Context, req fleet.InitiateDeviceActionRequest) (fleet.InitiateDeviceActionResponse, error) {
	var resp fleet.InitiateDeviceActionResponse
	err := c.invoke(ctx, MethodInitiateDeviceAction, &req, &resp)
	return resp, err
}

// GetDeviceActionStatus calls DeviceManagement.GetDeviceActionStatus.
func (c *Client) GetDeviceActionStatus(ctx context.Context, req fleet.GetDeviceActionStatusRequest) (fleet.GetDeviceActionStatusResponse, error) {
	var resp fleet.GetDeviceActionStatusResponse
	err := c.invoke(ctx, MethodGetDeviceActionStatus, &req, &resp)
	return resp, err
}
