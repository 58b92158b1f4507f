package device

import vk "github.com/vulkan-go/vulkan"

// Info describes the queried properties of one physical device
type Info struct {
	// Index is the position in the instance's enumeration order
	Index int

	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Type          vk.PhysicalDeviceType
	Invalid       bool

	// MaxImageDimension2D breaks ties between devices of equal type
	MaxImageDimension2D uint32

	Extensions []string
	Layers     []string
	Memory     vk.DeviceSize

	QueueFamilies []QueueFamily

	// SurfaceFormats and PresentModes are counts against the target
	// surface; a device with zero of either cannot present to it
	SurfaceFormats int
	PresentModes   int
}

// QueueFamily describes one queue family of a physical device
type QueueFamily struct {
	Index    int
	Count    int
	Graphics bool
	Present  bool
}

// HasExtension reports whether the device exposes the named extension
func (i Info) HasExtension(name string) bool {
	for _, extension := range i.Extensions {
		if extension == name {
			return true
		}
	}
	return false
}

// GraphicsFamily returns the first graphics-capable queue family
func (i Info) GraphicsFamily() (uint32, bool) {
	for _, family := range i.QueueFamilies {
		if family.Graphics {
			return uint32(family.Index), true
		}
	}
	return 0, false
}

// PresentFamily returns the first present-capable queue family
func (i Info) PresentFamily() (uint32, bool) {
	for _, family := range i.QueueFamilies {
		if family.Present {
			return uint32(family.Index), true
		}
	}
	return 0, false
}
