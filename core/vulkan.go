package core

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultApplicationInfo describes this application to the driver
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(0, 1, 0),
	PApplicationName:   safeString("vulkan-app"),
	PEngineName:        safeString("vulkan-app"),
}

const (
	validationLayerName      = "VK_LAYER_KHRONOS_validation"
	debugReportExtensionName = "VK_EXT_debug_report"
)

// NewVulkanInstance creates a Vulkan instance. procAddr is the loader's
// vkGetInstanceProcAddr as handed out by the window library; when nil the
// platform default loader is used. Requested extensions and layers are
// verified against what the loader exposes before creation, so a missing
// loader, extension or layer fails here and not somewhere downstream.
func NewVulkanInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg InstanceConfiguration, diagnostics *Collector) (Instance, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()"), ErrLoaderUnavailable)
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "vk.Init()"), ErrLoaderUnavailable)
	}

	availableExtensions, err := instanceExtensions()
	if err != nil {
		return nil, err
	}
	availableLayers, err := instanceLayers()
	if err != nil {
		return nil, err
	}
	log.WithField("extensions", availableExtensions).Debug("instance extensions supported by the loader")
	log.WithField("layers", availableLayers).Debug("instance layers supported by the loader")

	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, validationLayerName)
		cfg.Extensions = append(cfg.Extensions, debugReportExtensionName)
	}
	for _, extension := range cfg.Extensions {
		if !containsString(availableExtensions, extension) {
			return nil, errors.Mark(errors.Newf("instance extension %q not supported", extension), ErrMissingExtension)
		}
	}
	for _, layer := range cfg.Layers {
		if !containsString(availableLayers, layer) {
			return nil, errors.Mark(errors.Newf("instance layer %q not supported", layer), ErrMissingLayer)
		}
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if result := vk.CreateInstance(&instanceInfo, nil, &instance); result != vk.Success {
		return nil, resultErr("vk.CreateInstance()", result)
	}
	if err := vk.InitInstance(instance); err != nil {
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	physicalDevices, err := enumerateDevices(instance)
	if err != nil {
		return nil, err
	}

	v := &VulkanInstance{
		configuration:    cfg,
		instance:         instance,
		availableDevices: physicalDevices,
		diagnostics:      diagnostics,
	}
	if cfg.DebugMode {
		if err := v.installDebugReport(); err != nil {
			vk.DestroyInstance(instance, nil)
			return nil, err
		}
	}
	return v, nil
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	configuration InstanceConfiguration
	diagnostics   *Collector

	availableDevices []vk.PhysicalDevice
	surface          vk.Surface
	instance         vk.Instance
	debugCallback    vk.DebugReportCallback
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if result := vk.EnumeratePhysicalDevices(instance, &deviceCount, nil); result != vk.Success {
		return nil, resultErr("vk.EnumeratePhysicalDevices()", result)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if result := vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices); result != vk.Success {
		return nil, resultErr("vk.EnumeratePhysicalDevices()", result)
	}
	return availableDevices, nil
}

func instanceExtensions() ([]string, error) {
	var count uint32
	if result := vk.EnumerateInstanceExtensionProperties("", &count, nil); result != vk.Success {
		return nil, resultErr("vk.EnumerateInstanceExtensionProperties()", result)
	}
	properties := make([]vk.ExtensionProperties, count)
	if result := vk.EnumerateInstanceExtensionProperties("", &count, properties); result != vk.Success {
		return nil, resultErr("vk.EnumerateInstanceExtensionProperties()", result)
	}
	names := make([]string, 0, count)
	for _, property := range properties {
		property.Deref()
		names = append(names, vk.ToString(property.ExtensionName[:]))
	}
	return names, nil
}

func instanceLayers() ([]string, error) {
	var count uint32
	if result := vk.EnumerateInstanceLayerProperties(&count, nil); result != vk.Success {
		return nil, resultErr("vk.EnumerateInstanceLayerProperties()", result)
	}
	properties := make([]vk.LayerProperties, count)
	if result := vk.EnumerateInstanceLayerProperties(&count, properties); result != vk.Success {
		return nil, resultErr("vk.EnumerateInstanceLayerProperties()", result)
	}
	names := make([]string, 0, count)
	for _, property := range properties {
		property.Deref()
		names = append(names, vk.ToString(property.LayerName[:]))
	}
	return names, nil
}

func (v *VulkanInstance) installDebugReport() error {
	dci := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit |
			vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit |
			vk.DebugReportInformationBit |
			vk.DebugReportDebugBit),
		PfnCallback: v.debugReport,
	}

	var callback vk.DebugReportCallback
	if result := vk.CreateDebugReportCallback(v.instance, &dci, nil, &callback); result != vk.Success {
		return resultErr("vk.CreateDebugReportCallback()", result)
	}
	v.debugCallback = callback
	return nil
}

// debugReport runs inside driver API calls. It may not call back into
// the API or block, so the record is only handed to the collector.
func (v *VulkanInstance) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, layerPrefix string,
	message string, userData unsafe.Pointer) vk.Bool32 {

	v.diagnostics.Emit(Diagnostic{
		Severity: severityFromFlags(flags),
		Source:   layerPrefix,
		Message:  message,
	})
	return vk.False
}

func severityFromFlags(flags vk.DebugReportFlags) Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return SeverityInfo
	default:
		return SeverityVerbose
	}
}

// SetSurface implements interface
func (v *VulkanInstance) SetSurface(pSurface unsafe.Pointer) {
	v.surface = vk.SurfaceFromPointer(uintptr(pSurface))
}

// Surface implements interface
func (v *VulkanInstance) Surface() vk.Surface {
	if v.surface == nil {
		return vk.NullSurface
	}
	return v.surface
}

// Handle implements interface
func (v *VulkanInstance) Handle() vk.Instance {
	return v.instance
}

// Extensions implements interface
func (v *VulkanInstance) Extensions() []string {
	return v.configuration.Extensions
}

// AvailableDevices implements interface
func (v *VulkanInstance) AvailableDevices() []vk.PhysicalDevice {
	return v.availableDevices
}

// Diagnostics implements interface
func (v *VulkanInstance) Diagnostics() *Collector {
	return v.diagnostics
}

// Destroy implements interface. The debug callback and surface go
// first, the instance handle last.
func (v *VulkanInstance) Destroy() {
	if v.debugCallback != nil {
		vk.DestroyDebugReportCallback(v.instance, v.debugCallback, nil)
		v.debugCallback = nil
	}
	if v.surface != nil {
		vk.DestroySurface(v.instance, v.surface, nil)
		v.surface = nil
	}
	v.availableDevices = nil
	vk.DestroyInstance(v.instance, nil)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
