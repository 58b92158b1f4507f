package device

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Logical wraps a created logical device and its queues
type Logical struct {
	Handle vk.Device

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsFamily uint32
	PresentFamily  uint32
}

// NewLogical creates a logical device on the selection with one queue
// per distinct family. When graphics and present share a family the
// two queue handles are the same queue.
func NewLogical(selection Selection, extensions []string) (Logical, error) {
	families := []uint32{selection.GraphicsFamily}
	if selection.PresentFamily != selection.GraphicsFamily {
		families = append(families, selection.PresentFamily)
	}

	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var handle vk.Device
	if result := vk.CreateDevice(selection.PhysicalDevice, &dci, nil, &handle); result != vk.Success {
		return Logical{}, resultErr("vk.CreateDevice()", result)
	}

	logical := Logical{
		Handle:         handle,
		GraphicsFamily: selection.GraphicsFamily,
		PresentFamily:  selection.PresentFamily,
	}
	vk.GetDeviceQueue(handle, selection.GraphicsFamily, 0, &logical.GraphicsQueue)
	vk.GetDeviceQueue(handle, selection.PresentFamily, 0, &logical.PresentQueue)
	return logical, nil
}

// SharedFamily reports whether graphics and present use one family
func (l Logical) SharedFamily() bool {
	return l.GraphicsFamily == l.PresentFamily
}

// Destroy destroys the logical device. All device children must be
// gone by the time this is called.
func (l Logical) Destroy() {
	vk.DestroyDevice(l.Handle, nil)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}
