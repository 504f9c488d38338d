package fleet

import (
	"errors"

	"github.com/nerrad567/fleet-core/internal/action"
	"github.com/nerrad567/fleet-core/internal/device"
)

// Errors returned by Service operations.
//
// Transports map the not-found errors to their not-found status and
// ErrInvalidArgument to a bad-request status. Business refusals such as a
// duplicate registration are not errors: they come back as Success=false
// with a message.
var (
	// ErrDeviceNotFound is returned when the requested device does not exist.
	ErrDeviceNotFound = device.ErrDeviceNotFound

	// ErrActionNotFound is returned when the requested action does not exist.
	ErrActionNotFound = action.ErrActionNotFound

	// ErrInvalidArgument wraps request validation failures.
	ErrInvalidArgument = errors.New("fleet: invalid argument")
)
