package device

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// ErrNoSuitableDevice means no enumerated device can drive the surface
var ErrNoSuitableDevice = errors.New("no suitable physical device")

// SelectionOptions steer Pick and Select
type SelectionOptions struct {
	// PreferredIndex pins selection to an enumeration index when set
	PreferredIndex *int

	// Strict makes an unusable PreferredIndex fatal instead of
	// falling back to automatic selection
	Strict bool

	// RequiredExtensions must all be present on a suitable device
	RequiredExtensions []string
}

// Selection is the outcome of picking a physical device
type Selection struct {
	PhysicalDevice vk.PhysicalDevice
	Info           Info

	GraphicsFamily uint32
	PresentFamily  uint32
}

// Suitable reports whether the device can render to and present on
// the target surface with the required extensions.
func Suitable(info Info, requiredExtensions []string) bool {
	if info.Invalid {
		return false
	}
	if _, ok := info.GraphicsFamily(); !ok {
		return false
	}
	if _, ok := info.PresentFamily(); !ok {
		return false
	}
	for _, extension := range requiredExtensions {
		if !info.HasExtension(extension) {
			return false
		}
	}
	return info.SurfaceFormats > 0 && info.PresentModes > 0
}

// Score ranks a device for automatic selection. Unsuitable devices
// score negative. Device type dominates, maximum 2D image dimension
// breaks ties; equal scores resolve to the lower enumeration index.
func Score(info Info, requiredExtensions []string) int64 {
	if !Suitable(info, requiredExtensions) {
		return -1
	}
	return int64(typeRank(info.Type))<<32 | int64(info.MaxImageDimension2D)
}

func typeRank(deviceType vk.PhysicalDeviceType) uint32 {
	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 4
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 3
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 1
	default:
		return 0
	}
}

// Pick chooses a device index from infos. The result depends only on
// the infos and options, never on iteration order or timing.
func Pick(infos []Info, opts SelectionOptions) (int, error) {
	if opts.PreferredIndex != nil {
		idx := *opts.PreferredIndex
		if idx >= 0 && idx < len(infos) && Score(infos[idx], opts.RequiredExtensions) >= 0 {
			return idx, nil
		}
		if opts.Strict {
			return -1, errors.Mark(errors.Newf("preferred device index %d is not usable", idx), ErrNoSuitableDevice)
		}
		log.WithField("index", idx).Warn("preferred device is not usable, falling back to automatic selection")
	}

	best := -1
	bestScore := int64(-1)
	for i, info := range infos {
		if score := Score(info, opts.RequiredExtensions); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return -1, errors.Mark(errors.Newf("none of %d enumerated devices is usable", len(infos)), ErrNoSuitableDevice)
	}
	return best, nil
}

// Select enumerates the instance's devices, queries them against the
// surface and picks one deterministically.
func Select(physicalDevices []vk.PhysicalDevice, surface vk.Surface, opts SelectionOptions) (Selection, error) {
	if len(physicalDevices) == 0 {
		return Selection{}, errors.Mark(errors.New("instance enumerated no physical devices"), ErrNoSuitableDevice)
	}

	infos := ReadAllInfo(physicalDevices, surface)
	idx, err := Pick(infos, opts)
	if err != nil {
		return Selection{}, err
	}

	info := infos[idx]
	graphicsFamily, _ := info.GraphicsFamily()
	presentFamily, _ := info.PresentFamily()

	log.WithFields(log.Fields{
		"name":   info.Name,
		"type":   info.Type,
		"index":  info.Index,
		"memory": info.Memory,
	}).Info("selected physical device")

	return Selection{
		PhysicalDevice: physicalDevices[idx],
		Info:           info,
		GraphicsFamily: graphicsFamily,
		PresentFamily:  presentFamily,
	}, nil
}
