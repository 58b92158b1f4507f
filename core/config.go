package core

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
)

// Configuration defines a global application configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration
	Device   DeviceConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the idle poll interval in milliseconds, used
	// while the window has no presentable area
	EventPollDelay int
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	// DebugMode enables the validation layer and the debug report callback
	DebugMode bool

	// FailOnValidationError makes the frame loop exit once validation
	// has reported at least one error-severity record
	FailOnValidationError bool

	Extensions []string
	Layers     []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	SwapchainSize    uint32
	FramesInFlight   uint32
	DeviceExtensions []string

	ScreenWidth  uint32
	ScreenHeight uint32
}

// DeviceConfiguration is used to steer physical device selection
type DeviceConfiguration struct {
	// PreferredIndex pins selection to an enumeration index when set
	PreferredIndex *int

	// Strict makes an unusable PreferredIndex fatal instead of
	// falling back to automatic selection
	Strict bool
}

// DefaultConfiguration returns the configuration used when no
// environment overrides are present.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  100,
		},
		Instance: InstanceConfiguration{
			DebugMode: true,
		},
		Renderer: RendererConfiguration{
			ScreenWidth:    1024,
			ScreenHeight:   768,
			SwapchainSize:  3,
			FramesInFlight: 2,
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
		},
	}
}

// ConfigurationFromEnv builds a Configuration from the VKAPP_*
// environment variables, falling back to DefaultConfiguration values.
func ConfigurationFromEnv() (Configuration, error) {
	cfg := DefaultConfiguration()

	var err error
	if cfg.Instance.DebugMode, err = envBool("VKAPP_VALIDATION", cfg.Instance.DebugMode); err != nil {
		return cfg, err
	}
	if cfg.Instance.FailOnValidationError, err = envBool("VKAPP_FAIL_ON_VALIDATION", cfg.Instance.FailOnValidationError); err != nil {
		return cfg, err
	}
	if cfg.Renderer.ScreenWidth, err = envUint32("VKAPP_WIDTH", cfg.Renderer.ScreenWidth); err != nil {
		return cfg, err
	}
	if cfg.Renderer.ScreenHeight, err = envUint32("VKAPP_HEIGHT", cfg.Renderer.ScreenHeight); err != nil {
		return cfg, err
	}
	if cfg.Renderer.SwapchainSize, err = envUint32("VKAPP_SWAPCHAIN_SIZE", cfg.Renderer.SwapchainSize); err != nil {
		return cfg, err
	}
	if cfg.Renderer.FramesInFlight, err = envUint32("VKAPP_FRAMES_IN_FLIGHT", cfg.Renderer.FramesInFlight); err != nil {
		return cfg, err
	}
	if cfg.Renderer.FramesInFlight == 0 {
		return cfg, errors.New("VKAPP_FRAMES_IN_FLIGHT: must be at least 1")
	}
	if cfg.Time.FramesPerSecond, err = envInt("VKAPP_FPS", cfg.Time.FramesPerSecond); err != nil {
		return cfg, err
	}
	if cfg.Device.Strict, err = envBool("VKAPP_STRICT_DEVICE", cfg.Device.Strict); err != nil {
		return cfg, err
	}
	if raw := envy.Get("VKAPP_DEVICE_INDEX", ""); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, errors.Wrap(err, "VKAPP_DEVICE_INDEX")
		}
		cfg.Device.PreferredIndex = &idx
	}
	return cfg, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, errors.Wrap(err, key)
	}
	return val, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, errors.Wrap(err, key)
	}
	return val, nil
}

func envUint32(key string, fallback uint32) (uint32, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback, errors.Wrap(err, key)
	}
	return uint32(val), nil
}
