package core

import (
	"math"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/LongboardStudios/vulkan-app/device"
)

// FrameSync is the synchronisation set of one frame slot
type FrameSync struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore

	// InFlight is signaled when the slot's submission retires.
	// Created signaled so the first wait on a fresh slot passes
	InFlight vk.Fence
}

// NewVulkanRenderer creates a not yet initialised Vulkan API renderer
func NewVulkanRenderer(instance Instance, logical device.Logical, selection device.Selection, cfg RendererConfiguration) (Renderer, error) {
	if cfg.FramesInFlight == 0 {
		return nil, errors.New("renderer configuration: FramesInFlight must be at least 1")
	}
	return &VulkanRenderer{
		configuration:  cfg,
		surface:        instance.Surface(),
		physicalDevice: selection.PhysicalDevice,
		logicalDevice:  logical,
		drawableWidth:  cfg.ScreenWidth,
		drawableHeight: cfg.ScreenHeight,
		clearColor:     [4]float32{0.05, 0.05, 0.05, 1.0},
	}, nil
}

// VulkanRenderer is a Vulkan API renderer
type VulkanRenderer struct {
	configuration RendererConfiguration

	surface        vk.Surface
	physicalDevice vk.PhysicalDevice
	logicalDevice  device.Logical

	drawableWidth  uint32
	drawableHeight uint32
	resized        bool

	swapchain           vk.Swapchain
	swapchainImages     []vk.Image
	swapchainImageViews []vk.ImageView
	framebuffers        []vk.Framebuffer

	imageFormat     vk.Format
	imageColorspace vk.ColorSpace
	extent          vk.Extent2D

	renderPass vk.RenderPass

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	frames       []FrameSync
	currentFrame uint32

	clearColor [4]float32
}

// Initialise implements interface
func (v *VulkanRenderer) Initialise() error {
	support, err := querySwapchainSupport(v.physicalDevice, v.surface)
	if err != nil {
		return err
	}
	format := ChooseSurfaceFormat(support.Formats)
	v.imageFormat = format.Format
	v.imageColorspace = format.ColorSpace

	if err := v.createRenderPass(); err != nil {
		return err
	}

	if err := v.createSwapchain(nil); err != nil {
		return err
	}

	if err := v.createImageViews(); err != nil {
		return err
	}

	if err := v.createFramebuffers(); err != nil {
		return err
	}

	if err := v.createCommandPool(); err != nil {
		return err
	}

	if err := v.allocateCommandBuffers(); err != nil {
		return err
	}

	if err := v.createSynchronization(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"images":           len(v.swapchainImages),
		"width":            v.extent.Width,
		"height":           v.extent.Height,
		"frames_in_flight": v.configuration.FramesInFlight,
	}).Debug("renderer initialised")

	return nil
}

// DrawFrame implements interface
func (v *VulkanRenderer) DrawFrame() error {
	if !v.Ready() {
		return nil
	}

	slot := v.frames[v.currentFrame]
	vk.WaitForFences(v.logicalDevice.Handle, 1, []vk.Fence{slot.InFlight}, vk.True, math.MaxUint64)

	if v.resized {
		v.resized = false
		if err := v.recreateSwapchain(); err != nil {
			return err
		}
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(v.logicalDevice.Handle, v.swapchain, math.MaxUint64, slot.ImageAvailable, nil, &imageIndex)
	switch {
	case result == vk.ErrorOutOfDate:
		// stale swapchain, rebuilt for the next frame. The fence
		// stays signaled because nothing was submitted on it
		return v.recreateSwapchain()
	case result != vk.Success && result != vk.Suboptimal:
		return resultErr("vk.AcquireNextImage()", result)
	}

	// Only reset once a submission is certain, otherwise a failed
	// acquire would deadlock the next wait on this slot
	vk.ResetFences(v.logicalDevice.Handle, 1, []vk.Fence{slot.InFlight})

	commandBuffer := v.commandBuffers[v.currentFrame]
	vk.ResetCommandBuffer(commandBuffer, 0)
	if err := v.recordCommandBuffer(commandBuffer, imageIndex); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderFinished},
	}}

	if result := vk.QueueSubmit(v.logicalDevice.GraphicsQueue, 1, submit, slot.InFlight); result != vk.Success {
		return resultErr("vk.QueueSubmit()", result)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{v.swapchain},
		PImageIndices:      []uint32{imageIndex},
	}

	result = vk.QueuePresent(v.logicalDevice.PresentQueue, &presentInfo)
	switch {
	case result == vk.ErrorOutOfDate || result == vk.Suboptimal:
		if err := v.recreateSwapchain(); err != nil {
			return err
		}
	case result != vk.Success:
		return resultErr("vk.QueuePresent()", result)
	}

	v.currentFrame = (v.currentFrame + 1) % v.configuration.FramesInFlight
	return nil
}

// Resize implements interface
func (v *VulkanRenderer) Resize(width, height uint32) {
	v.drawableWidth = width
	v.drawableHeight = height
	// a zero area defers recreation until the window is presentable again
	v.resized = width > 0 && height > 0
}

// Ready implements interface
func (v *VulkanRenderer) Ready() bool {
	return v.drawableWidth > 0 && v.drawableHeight > 0
}

func (v *VulkanRenderer) recordCommandBuffer(commandBuffer vk.CommandBuffer, imageIndex uint32) error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if result := vk.BeginCommandBuffer(commandBuffer, &cbbi); result != vk.Success {
		return resultErr("vk.BeginCommandBuffer()", result)
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(v.clearColor[:])

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  v.renderPass,
		Framebuffer: v.framebuffers[imageIndex],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: v.extent,
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(commandBuffer, &rpbi, vk.SubpassContentsInline)
	vk.CmdEndRenderPass(commandBuffer)

	if result := vk.EndCommandBuffer(commandBuffer); result != vk.Success {
		return resultErr("vk.EndCommandBuffer()", result)
	}
	return nil
}

// recreateSwapchain builds the replacement swapchain and its views and
// framebuffers before anything belonging to the old one is destroyed.
func (v *VulkanRenderer) recreateSwapchain() error {
	if v.drawableWidth == 0 || v.drawableHeight == 0 {
		return nil
	}

	vk.DeviceWaitIdle(v.logicalDevice.Handle)

	oldSwapchain := v.swapchain
	oldImageViews := v.swapchainImageViews
	oldFramebuffers := v.framebuffers

	if err := v.createSwapchain(oldSwapchain); err != nil {
		return err
	}
	if err := v.createImageViews(); err != nil {
		return err
	}
	if err := v.createFramebuffers(); err != nil {
		return err
	}

	for _, framebuffer := range oldFramebuffers {
		vk.DestroyFramebuffer(v.logicalDevice.Handle, framebuffer, nil)
	}
	for _, imageView := range oldImageViews {
		vk.DestroyImageView(v.logicalDevice.Handle, imageView, nil)
	}
	if oldSwapchain != nil {
		vk.DestroySwapchain(v.logicalDevice.Handle, oldSwapchain, nil)
	}

	log.WithFields(log.Fields{
		"width":  v.extent.Width,
		"height": v.extent.Height,
	}).Debug("swapchain recreated")

	return nil
}

func (v *VulkanRenderer) createSwapchain(oldSwapchain vk.Swapchain) error {
	support, err := querySwapchainSupport(v.physicalDevice, v.surface)
	if err != nil {
		return err
	}

	extent := ChooseExtent(support.Capabilities, vk.Extent2D{
		Width:  v.drawableWidth,
		Height: v.drawableHeight,
	})
	presentMode := ChoosePresentMode(support.PresentModes)
	imageCount := ChooseImageCount(support.Capabilities, v.configuration.SwapchainSize)

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          v.surface,
		MinImageCount:    imageCount,
		ImageFormat:      v.imageFormat,
		ImageColorSpace:  v.imageColorspace,
		ImageExtent:      extent,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		OldSwapchain:     oldSwapchain,
	}
	if !v.logicalDevice.SharedFamily() {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = 2
		scci.PQueueFamilyIndices = []uint32{
			v.logicalDevice.GraphicsFamily,
			v.logicalDevice.PresentFamily,
		}
	}

	var swapchain vk.Swapchain
	if result := vk.CreateSwapchain(v.logicalDevice.Handle, &scci, nil, &swapchain); result != vk.Success {
		return resultErr("vk.CreateSwapchain()", result)
	}
	v.swapchain = swapchain
	v.extent = extent

	var numImages uint32
	if result := vk.GetSwapchainImages(v.logicalDevice.Handle, v.swapchain, &numImages, nil); result != vk.Success {
		return resultErr("vk.GetSwapchainImages()", result)
	}
	v.swapchainImages = make([]vk.Image, numImages)
	if result := vk.GetSwapchainImages(v.logicalDevice.Handle, v.swapchain, &numImages, v.swapchainImages); result != vk.Success {
		return resultErr("vk.GetSwapchainImages()", result)
	}
	return nil
}

func (v *VulkanRenderer) createImageViews() error {
	imageViews := make([]vk.ImageView, 0, len(v.swapchainImages))
	for idx := 0; idx < len(v.swapchainImages); idx++ {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    v.swapchainImages[idx],
			ViewType: vk.ImageViewType2d,
			Format:   v.imageFormat,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var imageView vk.ImageView
		if result := vk.CreateImageView(v.logicalDevice.Handle, &ivci, nil, &imageView); result != vk.Success {
			return errors.Wrapf(resultErr("vk.CreateImageView()", result), "image %d", idx)
		}
		imageViews = append(imageViews, imageView)
	}
	v.swapchainImageViews = imageViews
	return nil
}

func (v *VulkanRenderer) createFramebuffers() error {
	framebuffers := make([]vk.Framebuffer, 0, len(v.swapchainImageViews))
	for idx, imageView := range v.swapchainImageViews {
		fbci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      v.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{imageView},
			Width:           v.extent.Width,
			Height:          v.extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if result := vk.CreateFramebuffer(v.logicalDevice.Handle, &fbci, nil, &framebuffer); result != vk.Success {
			return errors.Wrapf(resultErr("vk.CreateFramebuffer()", result), "image %d", idx)
		}
		framebuffers = append(framebuffers, framebuffer)
	}
	v.framebuffers = framebuffers
	return nil
}

func (v *VulkanRenderer) createRenderPass() error {
	attachments := []vk.AttachmentDescription{{
		Format:         v.imageFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if result := vk.CreateRenderPass(v.logicalDevice.Handle, &rpci, nil, &renderPass); result != vk.Success {
		return resultErr("vk.CreateRenderPass()", result)
	}
	v.renderPass = renderPass
	return nil
}

func (v *VulkanRenderer) createCommandPool() error {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: v.logicalDevice.GraphicsFamily,
	}

	var commandPool vk.CommandPool
	if result := vk.CreateCommandPool(v.logicalDevice.Handle, &cpci, nil, &commandPool); result != vk.Success {
		return resultErr("vk.CreateCommandPool()", result)
	}
	v.commandPool = commandPool
	return nil
}

func (v *VulkanRenderer) allocateCommandBuffers() error {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        v.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: v.configuration.FramesInFlight,
	}

	commandBuffers := make([]vk.CommandBuffer, v.configuration.FramesInFlight)
	if result := vk.AllocateCommandBuffers(v.logicalDevice.Handle, &cbai, commandBuffers); result != vk.Success {
		return resultErr("vk.AllocateCommandBuffers()", result)
	}
	v.commandBuffers = commandBuffers
	return nil
}

func (v *VulkanRenderer) createSynchronization() error {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	frames := make([]FrameSync, v.configuration.FramesInFlight)
	for i := range frames {
		if result := vk.CreateSemaphore(v.logicalDevice.Handle, &sci, nil, &frames[i].ImageAvailable); result != vk.Success {
			return resultErr("vk.CreateSemaphore()", result)
		}
		if result := vk.CreateSemaphore(v.logicalDevice.Handle, &sci, nil, &frames[i].RenderFinished); result != vk.Success {
			return resultErr("vk.CreateSemaphore()", result)
		}
		if result := vk.CreateFence(v.logicalDevice.Handle, &fci, nil, &frames[i].InFlight); result != vk.Success {
			return resultErr("vk.CreateFence()", result)
		}
	}
	v.frames = frames
	return nil
}

// Destroy implements interface. Everything in flight retires before
// any handle is destroyed; children go before the device itself.
func (v *VulkanRenderer) Destroy() {
	vk.DeviceWaitIdle(v.logicalDevice.Handle)

	for _, frame := range v.frames {
		vk.DestroySemaphore(v.logicalDevice.Handle, frame.ImageAvailable, nil)
		vk.DestroySemaphore(v.logicalDevice.Handle, frame.RenderFinished, nil)
		vk.DestroyFence(v.logicalDevice.Handle, frame.InFlight, nil)
	}

	vk.DestroyCommandPool(v.logicalDevice.Handle, v.commandPool, nil)

	for _, framebuffer := range v.framebuffers {
		vk.DestroyFramebuffer(v.logicalDevice.Handle, framebuffer, nil)
	}
	for _, imageView := range v.swapchainImageViews {
		vk.DestroyImageView(v.logicalDevice.Handle, imageView, nil)
	}
	if v.swapchain != nil {
		vk.DestroySwapchain(v.logicalDevice.Handle, v.swapchain, nil)
	}

	vk.DestroyRenderPass(v.logicalDevice.Handle, v.renderPass, nil)
	v.logicalDevice.Destroy()
}
