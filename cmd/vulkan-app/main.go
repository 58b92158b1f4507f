package main

import (
	"os"
	"runtime"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/LongboardStudios/vulkan-app/core"
	"github.com/LongboardStudios/vulkan-app/device"
)

func init() {
	runtime.LockOSThread()
}

func newWindow(cfg core.RendererConfiguration) (*sdl.Window, error) {
	return sdl.CreateWindow("Vulkan",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_SHOWN)
}

// sdlEvents adapts the SDL event pump to the frame loop
type sdlEvents struct {
	window *sdl.Window
}

func (s *sdlEvents) Poll() []core.Event {
	var events []core.Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.QuitEvent:
			events = append(events, core.CloseRequestedEvent{})
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				events = append(events, core.CloseRequestedEvent{})
			}
		case *sdl.WindowEvent:
			switch et.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESTORED:
				width, height := s.window.VulkanGetDrawableSize()
				events = append(events, core.ResizedEvent{
					Width:  uint32(width),
					Height: uint32(height),
				})
			case sdl.WINDOWEVENT_MINIMIZED:
				events = append(events, core.ResizedEvent{Width: 0, Height: 0})
			case sdl.WINDOWEVENT_EXPOSED:
				events = append(events, core.RedrawRequestedEvent{})
			}
		}
	}
	return events
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("exiting with failure")
		os.Exit(1)
	}
}

func run() error {
	// a missing .env is fine, the defaults cover everything
	_ = godotenv.Load()

	cfg, err := core.ConfigurationFromEnv()
	if err != nil {
		return err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return err
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := newWindow(cfg.Renderer)
	if err != nil {
		return err
	}
	defer window.Destroy()

	diagnostics := core.NewCollector(log.WithField("component", "diagnostics"), 256)
	defer diagnostics.Close()

	instanceCfg := cfg.Instance
	instanceCfg.Extensions = append(instanceCfg.Extensions, window.VulkanGetInstanceExtensions()...)

	vkInstance, err := core.NewVulkanInstance(core.DefaultApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), instanceCfg, diagnostics)
	if err != nil {
		return err
	}
	defer vkInstance.Destroy()

	surface, err := window.VulkanCreateSurface(vkInstance.Handle())
	if err != nil {
		return err
	}
	vkInstance.SetSurface(surface)

	selection, err := device.Select(vkInstance.AvailableDevices(), vkInstance.Surface(), device.SelectionOptions{
		PreferredIndex:     cfg.Device.PreferredIndex,
		Strict:             cfg.Device.Strict,
		RequiredExtensions: cfg.Renderer.DeviceExtensions,
	})
	if err != nil {
		return err
	}

	logical, err := device.NewLogical(selection, cfg.Renderer.DeviceExtensions)
	if err != nil {
		return err
	}

	vkRenderer, err := core.NewVulkanRenderer(vkInstance, logical, selection, cfg.Renderer)
	if err != nil {
		logical.Destroy()
		return err
	}
	defer vkRenderer.Destroy()
	if err := vkRenderer.Initialise(); err != nil {
		return err
	}

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	driver := core.NewDriver(vkRenderer, &sdlEvents{window: window}, &timeService, diagnostics, cfg.Instance.FailOnValidationError)
	return driver.Run()
}
