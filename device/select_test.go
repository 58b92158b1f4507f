package device_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/LongboardStudios/vulkan-app/device"
)

var swapchainOnly = []string{"VK_KHR_swapchain"}

func usableDevice(index int, deviceType vk.PhysicalDeviceType, maxDimension uint32) device.Info {
	return device.Info{
		Index:               index,
		Name:                "test device",
		Type:                deviceType,
		MaxImageDimension2D: maxDimension,
		Extensions:          []string{"VK_KHR_swapchain"},
		QueueFamilies: []device.QueueFamily{
			{Index: 0, Count: 1, Graphics: true, Present: true},
		},
		SurfaceFormats: 2,
		PresentModes:   2,
	}
}

func TestScoreRejectsUnsuitable(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*device.Info)
	}{
		{"invalid", func(i *device.Info) { i.Invalid = true }},
		{"no graphics family", func(i *device.Info) { i.QueueFamilies[0].Graphics = false }},
		{"no present family", func(i *device.Info) { i.QueueFamilies[0].Present = false }},
		{"missing extension", func(i *device.Info) { i.Extensions = nil }},
		{"no surface formats", func(i *device.Info) { i.SurfaceFormats = 0 }},
		{"no present modes", func(i *device.Info) { i.PresentModes = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 16384)
			tc.mutate(&info)
			if score := device.Score(info, swapchainOnly); score >= 0 {
				t.Errorf("expected negative score, got %d", score)
			}
		})
	}
}

func TestScoreOrdersByDeviceType(t *testing.T) {
	ordered := []vk.PhysicalDeviceType{
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeIntegratedGpu,
		vk.PhysicalDeviceTypeVirtualGpu,
		vk.PhysicalDeviceTypeCpu,
		vk.PhysicalDeviceTypeOther,
	}

	for i := 0; i < len(ordered)-1; i++ {
		better := device.Score(usableDevice(0, ordered[i], 4096), swapchainOnly)
		worse := device.Score(usableDevice(0, ordered[i+1], 4096), swapchainOnly)
		if better <= worse {
			t.Errorf("type %v (score %d) should outrank %v (score %d)", ordered[i], better, ordered[i+1], worse)
		}
	}
}

func TestScoreTieBreaksOnImageDimension(t *testing.T) {
	small := device.Score(usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 8192), swapchainOnly)
	large := device.Score(usableDevice(1, vk.PhysicalDeviceTypeDiscreteGpu, 16384), swapchainOnly)
	if large <= small {
		t.Errorf("larger MaxImageDimension2D should win the tie: %d <= %d", large, small)
	}
}

func TestPickIsDeterministic(t *testing.T) {
	infos := []device.Info{
		usableDevice(0, vk.PhysicalDeviceTypeIntegratedGpu, 16384),
		usableDevice(1, vk.PhysicalDeviceTypeDiscreteGpu, 8192),
		usableDevice(2, vk.PhysicalDeviceTypeDiscreteGpu, 8192),
	}

	first, err := device.Pick(infos, device.SelectionOptions{RequiredExtensions: swapchainOnly})
	if err != nil {
		t.Fatal(err)
	}
	if first != 1 {
		t.Errorf("expected the first discrete GPU at index 1, got %d", first)
	}

	for run := 0; run < 10; run++ {
		again, err := device.Pick(infos, device.SelectionOptions{RequiredExtensions: swapchainOnly})
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("selection changed between runs: %d then %d", first, again)
		}
	}
}

func TestPickNoneSuitable(t *testing.T) {
	infos := []device.Info{
		usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 8192),
	}
	infos[0].Extensions = nil

	if _, err := device.Pick(infos, device.SelectionOptions{RequiredExtensions: swapchainOnly}); !errors.Is(err, device.ErrNoSuitableDevice) {
		t.Errorf("expected ErrNoSuitableDevice, got %v", err)
	}
}

func TestPickPreferredIndex(t *testing.T) {
	infos := []device.Info{
		usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 16384),
		usableDevice(1, vk.PhysicalDeviceTypeIntegratedGpu, 4096),
	}

	preferred := 1
	idx, err := device.Pick(infos, device.SelectionOptions{
		PreferredIndex:     &preferred,
		RequiredExtensions: swapchainOnly,
	})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("preferred index should override scoring, got %d", idx)
	}
}

func TestPickPreferredIndexFallsBack(t *testing.T) {
	infos := []device.Info{
		usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 16384),
	}

	for _, preferred := range []int{-1, 5} {
		idx, err := device.Pick(infos, device.SelectionOptions{
			PreferredIndex:     &preferred,
			RequiredExtensions: swapchainOnly,
		})
		if err != nil {
			t.Fatal(err)
		}
		if idx != 0 {
			t.Errorf("out of range preferred index %d should fall back to 0, got %d", preferred, idx)
		}
	}
}

func TestPickPreferredIndexStrict(t *testing.T) {
	infos := []device.Info{
		usableDevice(0, vk.PhysicalDeviceTypeDiscreteGpu, 16384),
	}

	preferred := 5
	_, err := device.Pick(infos, device.SelectionOptions{
		PreferredIndex:     &preferred,
		Strict:             true,
		RequiredExtensions: swapchainOnly,
	})
	if !errors.Is(err, device.ErrNoSuitableDevice) {
		t.Errorf("strict mode should fail on an unusable preferred index, got %v", err)
	}
}
