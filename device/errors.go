package device

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Failure classes a device can report as early as logical device
// creation. The core package reexports them for frame-loop callers.
var (
	// ErrDeviceLost means the device was lost
	ErrDeviceLost = errors.New("device lost")

	// ErrOutOfMemory means a device or host allocation failed
	ErrOutOfMemory = errors.New("out of memory")
)

// resultErr wraps a non-success vk.Result with the failing call site
// and marks the classes callers treat as fatal.
func resultErr(op string, result vk.Result) error {
	err := errors.Wrap(vk.Error(result), op)
	switch result {
	case vk.ErrorDeviceLost:
		return errors.Mark(err, ErrDeviceLost)
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory:
		return errors.Mark(err, ErrOutOfMemory)
	}
	return err
}
