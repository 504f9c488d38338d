package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nerrad567/fleet-core/internal/fleet"
)

// Status messages for not-found lookups.
const (
	msgDeviceNotFound = "Device not found"
	msgActionNotFound = "Action not found"
)

// toStatus converts a service error into a gRPC status error.
//
// Not-found lookups become codes.NotFound, validation failures become
// codes.InvalidArgument, and anything unrecognised becomes codes.Internal.
// Errors that already carry a status pass through unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, fleet.ErrDeviceNotFound):
		return status.Error(codes.NotFound, msgDeviceNotFound)
	case errors.Is(err, fleet.ErrActionNotFound):
		return status.Error(codes.NotFound, msgActionNotFound)
	case errors.Is(err, fleet.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// fromStatus converts a gRPC error received by the client back into the
// service's sentinel errors where one applies, so callers can use errors.Is
// regardless of transport. The remote message is kept in the error text.
func fromStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		if method == MethodGetDeviceActionStatus {
			return fmt.Errorf("%w: %s", fleet.ErrActionNotFound, st.Message())
		}
		return fmt.Errorf("%w: %s", fleet.ErrDeviceNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", fleet.ErrInvalidArgument, st.Message())
	default:
		return err
	}
}
