package core

import (
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// SwapchainSupport is the surface capability snapshot swapchain
// parameters are derived from. All nested values are dereferenced.
type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func querySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (SwapchainSupport, error) {
	var support SwapchainSupport

	if result := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &support.Capabilities); result != vk.Success {
		return support, resultErr("vk.GetPhysicalDeviceSurfaceCapabilities()", result)
	}
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if result := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); result != vk.Success {
		return support, resultErr("vk.GetPhysicalDeviceSurfaceFormats()", result)
	}
	support.Formats = make([]vk.SurfaceFormat, formatCount)
	if result := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, support.Formats); result != vk.Success {
		return support, resultErr("vk.GetPhysicalDeviceSurfaceFormats()", result)
	}
	for i := range support.Formats {
		support.Formats[i].Deref()
	}

	var modeCount uint32
	if result := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil); result != vk.Success {
		return support, resultErr("vk.GetPhysicalDeviceSurfacePresentModes()", result)
	}
	support.PresentModes = make([]vk.PresentMode, modeCount)
	if result := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, support.PresentModes); result != vk.Success {
		return support, resultErr("vk.GetPhysicalDeviceSurfacePresentModes()", result)
	}
	return support, nil
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB, otherwise the first
// format the surface offers.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox, otherwise FIFO, which every
// conforming driver provides.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent resolves the swapchain extent. A CurrentExtent other
// than the ~0 sentinel is authoritative; otherwise the drawable size
// is clamped into the supported range.
func ChooseExtent(capabilities vk.SurfaceCapabilities, drawable vk.Extent2D) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(drawable.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clampUint32(drawable.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount clamps the desired image count into the supported
// range. A MaxImageCount of zero means no upper bound.
func ChooseImageCount(capabilities vk.SurfaceCapabilities, desired uint32) uint32 {
	count := desired
	if count < capabilities.MinImageCount {
		count = capabilities.MinImageCount
	}
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

func clampUint32(value, min, max uint32) uint32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
