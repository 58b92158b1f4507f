package core

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/LongboardStudios/vulkan-app/device"
)

// Sentinels for the failure classes the frame loop and startup path
// distinguish. The classes are attached with cockroachdb/errors.Mark,
// which the stdlib errors.Is does not traverse; match with that
// package's Is or with the helpers below.
var (
	// ErrLoaderUnavailable means no Vulkan loader could be bound at all
	ErrLoaderUnavailable = errors.New("vulkan loader unavailable")

	// ErrMissingExtension means a required instance extension is not present
	ErrMissingExtension = errors.New("required instance extension not present")

	// ErrMissingLayer means a requested instance layer is not present
	ErrMissingLayer = errors.New("requested instance layer not present")

	// ErrDeviceLost means the logical device was lost. Shared with
	// the device package, which can see the condition as early as
	// device creation
	ErrDeviceLost = device.ErrDeviceLost

	// ErrOutOfMemory means a device or host allocation failed
	ErrOutOfMemory = device.ErrOutOfMemory

	// ErrValidationFailure means validation reported errors while
	// fail-on-validation mode is enabled
	ErrValidationFailure = errors.New("validation reported errors")
)

// IsStartupFatal reports whether err precludes bringing up a Vulkan
// context at all, as opposed to a condition worth retrying.
func IsStartupFatal(err error) bool {
	return errors.IsAny(err, ErrLoaderUnavailable, ErrMissingExtension, ErrMissingLayer, device.ErrNoSuitableDevice)
}

// IsSubmissionFatal reports whether err ends the frame loop for good.
func IsSubmissionFatal(err error) bool {
	return errors.IsAny(err, ErrDeviceLost, ErrOutOfMemory)
}

// resultErr wraps a non-success vk.Result with the failing call site and
// marks the classes the frame loop treats as fatal.
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
