package core

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// AvailableDevices returns handles of Physical Devices
	// from the Vulkan API
	AvailableDevices() []vk.PhysicalDevice

	// SetSurface sets the window surface for rendering
	SetSurface(unsafe.Pointer)

	// Surface returns the window surface, if it's not set
	// it should return a valid but empty surface
	Surface() vk.Surface

	// Extensions returns the instance extensions that were enabled
	Extensions() []string

	// Handle returns the inner handle of the underlying API
	Handle() vk.Instance

	// Diagnostics returns the sink the driver layer reports into
	Diagnostics() *Collector

	// Destroy destroys internal members
	Destroy()
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialise() before use.
type Renderer interface {
	// Initialise sets up the swapchain and frame resources
	Initialise() error

	// DrawFrame acquires, records, submits and presents one frame.
	// A stale swapchain is rebuilt internally and is not an error
	DrawFrame() error

	// Resize records a new drawable size, picked up on the next frame
	Resize(width, height uint32)

	// Ready reports whether the drawable has a presentable area
	Ready() bool

	// Destroy waits for the device to go idle and destroys internal members
	Destroy()
}

// Event is a window system event relevant to the frame loop.
type Event interface {
	isEvent()
}

// ResizedEvent reports a new drawable size. A zero area means
// the window is minimised or otherwise not presentable.
type ResizedEvent struct {
	Width  uint32
	Height uint32
}

// CloseRequestedEvent asks the frame loop to shut down.
type CloseRequestedEvent struct{}

// RedrawRequestedEvent reports that the window contents were invalidated.
type RedrawRequestedEvent struct{}

func (ResizedEvent) isEvent()         {}
func (CloseRequestedEvent) isEvent()  {}
func (RedrawRequestedEvent) isEvent() {}

// EventSource pumps window system events into the frame loop.
type EventSource interface {
	// Poll drains the pending events without blocking
	Poll() []Event
}
