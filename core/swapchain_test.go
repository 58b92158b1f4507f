package core_test

import (
	"math"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/LongboardStudios/vulkan-app/core"
)

func TestChooseSurfaceFormatPrefersSrgb(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	chosen := core.ChooseSurfaceFormat(formats)
	if chosen.Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("expected B8G8R8A8 sRGB, got %v", chosen.Format)
	}
}

func TestChooseSurfaceFormatFallsBackToFirst(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	chosen := core.ChooseSurfaceFormat(formats)
	if chosen.Format != vk.FormatR8g8b8a8Unorm {
		t.Errorf("expected the first offered format, got %v", chosen.Format)
	}
}

func TestChoosePresentModePrefersMailbox(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeImmediate}
	if mode := core.ChoosePresentMode(modes); mode != vk.PresentModeMailbox {
		t.Errorf("expected mailbox, got %v", mode)
	}
}

func TestChoosePresentModeFallsBackToFifo(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}
	if mode := core.ChoosePresentMode(modes); mode != vk.PresentModeFifo {
		t.Errorf("expected FIFO fallback, got %v", mode)
	}
}

func TestChooseExtentFixedIsAuthoritative(t *testing.T) {
	capabilities := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 640, Height: 480},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}

	extent := core.ChooseExtent(capabilities, vk.Extent2D{Width: 1920, Height: 1080})
	if extent.Width != 640 || extent.Height != 480 {
		t.Errorf("fixed CurrentExtent must win, got %dx%d", extent.Width, extent.Height)
	}
}

func TestChooseExtentClampsDrawable(t *testing.T) {
	capabilities := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 2048, Height: 2048},
	}

	cases := []struct {
		name          string
		drawable      vk.Extent2D
		width, height uint32
	}{
		{"within range", vk.Extent2D{Width: 1024, Height: 768}, 1024, 768},
		{"below minimum", vk.Extent2D{Width: 16, Height: 16}, 64, 64},
		{"above maximum", vk.Extent2D{Width: 8192, Height: 8192}, 2048, 2048},
		{"mixed", vk.Extent2D{Width: 16, Height: 8192}, 64, 2048},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extent := core.ChooseExtent(capabilities, tc.drawable)
			if extent.Width != tc.width || extent.Height != tc.height {
				t.Errorf("expected %dx%d, got %dx%d", tc.width, tc.height, extent.Width, extent.Height)
			}
			if extent.Width < capabilities.MinImageExtent.Width || extent.Width > capabilities.MaxImageExtent.Width {
				t.Errorf("width %d escaped the supported range", extent.Width)
			}
			if extent.Height < capabilities.MinImageExtent.Height || extent.Height > capabilities.MaxImageExtent.Height {
				t.Errorf("height %d escaped the supported range", extent.Height)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	cases := []struct {
		name     string
		min, max uint32
		desired  uint32
		expected uint32
	}{
		{"within range", 2, 8, 3, 3},
		{"below minimum", 2, 8, 1, 2},
		{"above maximum", 2, 3, 5, 3},
		{"unbounded maximum", 2, 0, 16, 16},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			capabilities := vk.SurfaceCapabilities{
				MinImageCount: tc.min,
				MaxImageCount: tc.max,
			}
			if count := core.ChooseImageCount(capabilities, tc.desired); count != tc.expected {
				t.Errorf("expected %d images, got %d", tc.expected, count)
			}
		})
	}
}
