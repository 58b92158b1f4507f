package device

import (
	vk "github.com/vulkan-go/vulkan"
)

// ReadInfo queries one physical device against the target surface.
// Query failures mark the Info invalid instead of aborting, so a
// broken device never stops enumeration of the others.
func ReadInfo(physicalDevice vk.PhysicalDevice, index int, surface vk.Surface) Info {
	info := Info{Index: index}

	// Extension info
	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &numDeviceExtensions, nil)); err != nil {
		info.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &numDeviceExtensions, deviceExt)); err != nil {
		info.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	// Layers info
	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physicalDevice, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physicalDevice, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	// Memory info
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &memoryProperties)
	memoryProperties.Deref()
	for iMem := (uint32)(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory = info.Memory + memoryProperties.MemoryHeaps[iMem].Size
	}

	// General device info
	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physicalDevice, &physicalDeviceProperties)
	physicalDeviceProperties.Deref()
	physicalDeviceProperties.Limits.Deref()
	info.ID = (int)(physicalDeviceProperties.DeviceID)
	info.VendorID = (int)(physicalDeviceProperties.VendorID)
	info.Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
	info.DriverVersion = (int)(physicalDeviceProperties.DriverVersion)
	info.Type = physicalDeviceProperties.DeviceType
	info.MaxImageDimension2D = physicalDeviceProperties.Limits.MaxImageDimension2D

	// Queue families and surface support
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, queueFamilies)
	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()

		var supportsPresent vk.Bool32
		if surface != vk.NullSurface {
			vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, i, surface, &supportsPresent)
		}

		info.QueueFamilies = append(info.QueueFamilies, QueueFamily{
			Index:    int(i),
			Count:    int(queueFamilies[i].QueueCount),
			Graphics: queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Present:  supportsPresent.B(),
		})
	}

	// Presentation capability against the surface
	if surface != vk.NullSurface {
		var formatCount uint32
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil)); err != nil {
			info.Invalid = true
		}
		info.SurfaceFormats = int(formatCount)

		var modeCount uint32
		if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil)); err != nil {
			info.Invalid = true
		}
		info.PresentModes = int(modeCount)
	}

	return info
}

// ReadAllInfo queries every device handle in enumeration order
func ReadAllInfo(physicalDevices []vk.PhysicalDevice, surface vk.Surface) []Info {
	infos := make([]Info, len(physicalDevices))
	for i, physicalDevice := range physicalDevices {
		infos[i] = ReadInfo(physicalDevice, i, surface)
	}
	return infos
}
