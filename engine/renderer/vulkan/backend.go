package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/glint3d/glint/engine/core"
	"github.com/glint3d/glint/engine/math"
	"github.com/glint3d/glint/engine/platform"
	"github.com/glint3d/glint/engine/scene"
)

// DefaultShaderDir is where compiled SPIR-V binaries are read from. The
// asset pipeline writes phong/light/overlay vert+frag pairs here.
const DefaultShaderDir = "assets/shaders"

const acquireTimeout = ^uint64(0)

// maxRenderables bounds the descriptor pool. Each renderable holds one set
// per frame slot.
const maxRenderables = 1024

// renderableResources is the GPU-resident state for one renderable: static
// geometry buffers plus per-slot uniform buffers and descriptor sets. Created
// lazily the first frame the renderable shows up in a packet.
type renderableResources struct {
	kind       scene.RenderableKind
	vertexBuf  *VulkanBuffer
	indexBuf   *VulkanBuffer
	indexCount uint32
	texture    *VulkanTexture

	// Phong uses two uniform blocks per slot, marker and overlay one.
	uniformBufs    [MaxFramesInFlight][]*VulkanBuffer
	descriptorSets [MaxFramesInFlight]vk.DescriptorSet
}

// VulkanRenderer owns the Vulkan device and everything hanging off it. It is
// the GPU-facing half of the renderer; the frontend drives it one frame slot
// at a time.
type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext
	ShaderDir   string

	// slotCount is the configured frames-in-flight, clamped to
	// [1, MaxFramesInFlight].
	slotCount int

	debug bool

	descriptorPool vk.DescriptorPool
	phongLayout    vk.DescriptorSetLayout
	markerLayout   vk.DescriptorSetLayout
	overlayLayout  vk.DescriptorSetLayout

	phongPipeline   *VulkanPipeline
	markerPipeline  *VulkanPipeline
	overlayPipeline *VulkanPipeline

	defaultTexture *VulkanTexture
	resources      map[string]*renderableResources
}

func New(p *platform.Platform, framesInFlight int) *VulkanRenderer {
	if framesInFlight < 1 {
		framesInFlight = 1
	} else if framesInFlight > MaxFramesInFlight {
		framesInFlight = MaxFramesInFlight
	}
	return &VulkanRenderer{
		platform:  p,
		ShaderDir: DefaultShaderDir,
		slotCount: framesInFlight,
		context: &VulkanContext{
			Allocator: nil,
		},
		debug:     true,
		resources: make(map[string]*renderableResources),
	}
}

func (vr *VulkanRenderer) Initialize(appName string, width, height uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("vulkan loader not available: GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan: %w", err)
	}

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	if vr.debug {
		if err := vr.createDebugger(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateVulkanSurface(vr.context.Instance)
	if err != nil {
		return fmt.Errorf("failed to create platform surface: %w", err)
	}
	vr.context.Surface = surface

	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	// One command buffer, two semaphores and one fence per frame slot. The
	// fence starts signaled so the first frame does not wait on work that was
	// never submitted.
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.slotCount)
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.slotCount)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, vr.slotCount)
	vr.context.InFlightFences = make([]*VulkanFence, vr.slotCount)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < vr.slotCount; i++ {
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb

		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create image-available semaphore: %s", VulkanResultString(res))
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create queue-complete semaphore: %s", VulkanResultString(res))
		}
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	pool, err := DescriptorPoolCreate(vr.context, maxRenderables*vr.slotCount)
	if err != nil {
		return err
	}
	vr.descriptorPool = pool

	if vr.phongLayout, err = DescriptorSetLayoutCreate(vr.context, PhongDescriptorBindings()); err != nil {
		return err
	}
	if vr.markerLayout, err = DescriptorSetLayoutCreate(vr.context, MarkerDescriptorBindings()); err != nil {
		return err
	}
	if vr.overlayLayout, err = DescriptorSetLayoutCreate(vr.context, OverlayDescriptorBindings()); err != nil {
		return err
	}

	if err := vr.createPipelines(); err != nil {
		return err
	}

	if vr.defaultTexture, err = TextureCreateDefault(vr.context); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Glint Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetVulkanInstanceExtensions()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var requiredLayers []string
	if vr.debug {
		requiredLayers = []string{"VK_LAYER_KHRONOS_validation"}
		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layers: %s", VulkanResultString(res))
		}

		for _, required := range requiredLayers {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if required == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				// Validation is best effort: run without it rather than fail.
				core.LogWarn("Validation layer %s not available, disabling validation.", required)
				requiredLayers = nil
				break
			}
		}
	}
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		return fmt.Errorf("failed to create vulkan instance: %s", VulkanResultString(res))
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan instance created.")
	return nil
}

func (vr *VulkanRenderer) createDebugger() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
		PfnCallback: dbgCallbackFunc,
	}
	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
		return fmt.Errorf("vk.CreateDebugReportCallback failed: %w", err)
	}
	vr.context.debugMessenger = dbg
	return nil
}

func (vr *VulkanRenderer) createPipelines() error {
	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}

	vertex3DStride := uint32(unsafe.Sizeof(math.Vertex3D{}))
	vertex2DStride := uint32(unsafe.Sizeof(math.Vertex2D{}))

	phongAttributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Position))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Normal))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Texcoord))},
	}
	// The marker shader only consumes the position; stride still spans the
	// full cube vertex so the same buffers work for both passes.
	markerAttributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
	}
	overlayAttributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
	}

	build := func(name string, stride uint32, attrs []vk.VertexInputAttributeDescription, layout vk.DescriptorSetLayout, cullMode vk.CullModeFlagBits, depthTest bool) (*VulkanPipeline, error) {
		vert, err := NewShaderStage(vr.context, vr.ShaderDir, name, "vert", vk.ShaderStageVertexBit)
		if err != nil {
			return nil, err
		}
		defer vert.Destroy(vr.context)
		frag, err := NewShaderStage(vr.context, vr.ShaderDir, name, "frag", vk.ShaderStageFragmentBit)
		if err != nil {
			return nil, err
		}
		defer frag.Destroy(vr.context)

		return NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
			Renderpass:           vr.context.MainRenderpass,
			Stride:               stride,
			Attributes:           attrs,
			DescriptorSetLayouts: []vk.DescriptorSetLayout{layout},
			Stages: []vk.PipelineShaderStageCreateInfo{
				vert.ShaderStageCreateInfo,
				frag.ShaderStageCreateInfo,
			},
			Viewport:  viewport,
			Scissor:   scissor,
			CullMode:  cullMode,
			DepthTest: depthTest,
		})
	}

	phong, err := build("phong", vertex3DStride, phongAttributes, vr.phongLayout, vk.CullModeBackBit, true)
	if err != nil {
		return err
	}
	marker, err := build("light", vertex3DStride, markerAttributes, vr.markerLayout, vk.CullModeBackBit, true)
	if err != nil {
		phong.Destroy(vr.context)
		return err
	}
	overlay, err := build("overlay", vertex2DStride, overlayAttributes, vr.overlayLayout, vk.CullModeNone, false)
	if err != nil {
		phong.Destroy(vr.context)
		marker.Destroy(vr.context)
		return err
	}

	vr.phongPipeline = phong
	vr.markerPipeline = marker
	vr.overlayPipeline = overlay
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			vr.context.Swapchain.Views[i],
			vr.context.Swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(
			vr.context,
			vr.context.MainRenderpass,
			vr.context.Swapchain.Extent.Width,
			vr.context.Swapchain.Extent.Height,
			attachments)
		if err != nil {
			return err
		}
		vr.context.Swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) SlotCount() int {
	return vr.slotCount
}

func (vr *VulkanRenderer) SlotFence(slot int) core.Fence {
	return vr.context.InFlightFences[slot]
}

func (vr *VulkanRenderer) AcquireImage(slot int) (uint32, error) {
	return vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, acquireTimeout, vr.context.ImageAvailableSemaphores[slot])
}

// WriteUniforms refreshes the slot's uniform buffers from the packet,
// creating GPU resources for renderables seen for the first time. The slot's
// fence has signaled by the time this runs, so the writes cannot race the
// GPU.
func (vr *VulkanRenderer) WriteUniforms(slot int, packet *scene.FramePacket) error {
	for _, r := range packet.Renderables {
		res, err := vr.ensureResources(r)
		if err != nil {
			return err
		}

		switch r.Kind {
		case scene.KindLitMesh:
			vert, frag := scene.BuildPhongUniforms(r.Mesh, packet.State)
			if err := res.uniformBufs[slot][0].LoadData(vr.context, 0, scene.UniformBytes(vert)); err != nil {
				return err
			}
			if err := res.uniformBufs[slot][1].LoadData(vr.context, 0, scene.UniformBytes(frag)); err != nil {
				return err
			}
		case scene.KindLightMarker:
			block := scene.BuildMarkerUniform(r.Marker, packet.State)
			if err := res.uniformBufs[slot][0].LoadData(vr.context, 0, scene.UniformBytes(block)); err != nil {
				return err
			}
		case scene.KindOverlay:
			block := scene.BuildOverlayUniform(r.Overlay, packet.State)
			if err := res.uniformBufs[slot][0].LoadData(vr.context, 0, scene.UniformBytes(block)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Record re-records the slot's command buffer: one renderpass over the given
// swapchain image, lit meshes and the marker first, overlays on top.
func (vr *VulkanRenderer) Record(slot int, imageIndex uint32, packet *scene.FramePacket) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[slot]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X: 0, Y: 0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0, MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[imageIndex].Handle)

	// Two passes over the packet keep overlays above the 3D scene without a
	// sort.
	for _, r := range packet.Renderables {
		if r.Kind == scene.KindOverlay {
			continue
		}
		if err := vr.drawRenderable(commandBuffer, slot, r); err != nil {
			return err
		}
	}
	for _, r := range packet.Renderables {
		if r.Kind != scene.KindOverlay {
			continue
		}
		if err := vr.drawRenderable(commandBuffer, slot, r); err != nil {
			return err
		}
	}

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	return commandBuffer.End()
}

func (vr *VulkanRenderer) drawRenderable(commandBuffer *VulkanCommandBuffer, slot int, r *scene.Renderable) error {
	res, ok := vr.resources[r.ID]
	if !ok {
		return fmt.Errorf("renderable %s has no GPU resources", r.ID)
	}

	var pipeline *VulkanPipeline
	switch r.Kind {
	case scene.KindLitMesh:
		pipeline = vr.phongPipeline
	case scene.KindLightMarker:
		pipeline = vr.markerPipeline
	case scene.KindOverlay:
		pipeline = vr.overlayPipeline
	}

	pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{res.vertexBuf.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, res.indexBuf.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(
		commandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		pipeline.PipelineLayout,
		0, 1,
		[]vk.DescriptorSet{res.descriptorSets[slot]},
		0, nil)
	vk.CmdDrawIndexed(commandBuffer.Handle, res.indexCount, 1, 0, 0, 0)
	return nil
}

func (vr *VulkanRenderer) Submit(slot int, imageIndex uint32) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[slot]

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[slot]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[slot]},
		// Color writes must wait for the image; earlier stages may overlap
		// the presentation engine.
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}

	if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[slot].Handle); res != vk.Success {
		return fmt.Errorf("queue submit failed: %s", VulkanResultString(res))
	}
	commandBuffer.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) Present(slot int, imageIndex uint32) error {
	err := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[slot],
		imageIndex)
	if err == nil {
		vr.FrameNumber++
	}
	return err
}

// Recreate rebuilds the swapchain and framebuffers for the new surface size.
// The caller has already drained the device.
func (vr *VulkanRenderer) Recreate(width, height uint32) error {
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	if err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport); err != nil {
		return err
	}

	for _, fb := range vr.context.Swapchain.Framebuffers {
		if fb != nil {
			fb.Destroy(vr.context)
		}
	}

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, width, height)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	vr.context.MainRenderpass.W = float32(width)
	vr.context.MainRenderpass.H = float32(height)

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	return vr.regenerateFramebuffers()
}

// RebuildPipelines recreates the three pipelines from the shader binaries on
// disk. The caller has already drained the device.
func (vr *VulkanRenderer) RebuildPipelines() error {
	vr.phongPipeline.Destroy(vr.context)
	vr.markerPipeline.Destroy(vr.context)
	vr.overlayPipeline.Destroy(vr.context)
	vr.phongPipeline, vr.markerPipeline, vr.overlayPipeline = nil, nil, nil
	return vr.createPipelines()
}

func (vr *VulkanRenderer) WaitIdle() error {
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
		return fmt.Errorf("device wait idle failed: %s", VulkanResultString(res))
	}
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	if err := vr.WaitIdle(); err != nil {
		return err
	}

	// Opposite order of creation.
	for id, res := range vr.resources {
		vr.destroyResources(res)
		delete(vr.resources, id)
	}
	vr.defaultTexture.Destroy(vr.context)

	vr.phongPipeline.Destroy(vr.context)
	vr.markerPipeline.Destroy(vr.context)
	vr.overlayPipeline.Destroy(vr.context)

	device := vr.context.Device.LogicalDevice
	if vr.phongLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, vr.phongLayout, vr.context.Allocator)
	}
	if vr.markerLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, vr.markerLayout, vr.context.Allocator)
	}
	if vr.overlayLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, vr.overlayLayout, vr.context.Allocator)
	}
	if vr.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(device, vr.descriptorPool, vr.context.Allocator)
	}

	for i := 0; i < vr.slotCount; i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(device, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(device, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.GraphicsCommandBuffers = nil

	for _, fb := range vr.context.Swapchain.Framebuffers {
		if fb != nil {
			fb.Destroy(vr.context)
		}
	}
	vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	return nil
}

// ensureResources returns the renderable's GPU state, creating geometry
// buffers, uniform buffers, a texture and descriptor sets on first sight.
func (vr *VulkanRenderer) ensureResources(r *scene.Renderable) (*renderableResources, error) {
	if res, ok := vr.resources[r.ID]; ok {
		return res, nil
	}

	res := &renderableResources{kind: r.Kind}

	var err error
	switch r.Kind {
	case scene.KindLitMesh:
		if err = vr.createMeshGeometry(res, r.Mesh.Vertices, r.Mesh.Indices); err != nil {
			return nil, err
		}
		if r.Mesh.Material.Texture != nil {
			t := r.Mesh.Material.Texture
			if res.texture, err = TextureCreate(vr.context, t.Width, t.Height, t.Pixels); err != nil {
				vr.destroyResources(res)
				return nil, err
			}
		}
		texture := res.texture
		if texture == nil {
			texture = vr.defaultTexture
		}
		for slot := 0; slot < vr.slotCount; slot++ {
			vertBuf, err := vr.createUniformBuffer(unsafe.Sizeof(scene.PhongVertexUniform{}))
			if err != nil {
				vr.destroyResources(res)
				return nil, err
			}
			fragBuf, err := vr.createUniformBuffer(unsafe.Sizeof(scene.PhongFragmentUniform{}))
			if err != nil {
				vertBuf.Destroy(vr.context)
				vr.destroyResources(res)
				return nil, err
			}
			res.uniformBufs[slot] = []*VulkanBuffer{vertBuf, fragBuf}

			set, err := DescriptorSetAllocate(vr.context, vr.descriptorPool, vr.phongLayout)
			if err != nil {
				vr.destroyResources(res)
				return nil, err
			}
			DescriptorWriteBuffer(vr.context, set, phongVertexUniformBinding, vertBuf)
			DescriptorWriteBuffer(vr.context, set, phongFragmentUniformBinding, fragBuf)
			DescriptorWriteSampler(vr.context, set, phongSamplerBinding, texture.Image.View, texture.Sampler)
			res.descriptorSets[slot] = set
		}

	case scene.KindLightMarker:
		vertices, indices := scene.NewCubeMesh()
		if err = vr.createMeshGeometry(res, vertices, indices); err != nil {
			return nil, err
		}
		if err = vr.createSingleUniformSets(res, vr.markerLayout, unsafe.Sizeof(scene.LightMarkerUniform{})); err != nil {
			vr.destroyResources(res)
			return nil, err
		}

	case scene.KindOverlay:
		vertexBytes := vertex2DBytes(r.Overlay.Vertices)
		indexBytes := indexBytes(r.Overlay.Indices)
		if res.vertexBuf, err = BufferCreateDeviceLocal(vr.context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), vertexBytes); err != nil {
			return nil, err
		}
		if res.indexBuf, err = BufferCreateDeviceLocal(vr.context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), indexBytes); err != nil {
			vr.destroyResources(res)
			return nil, err
		}
		res.indexCount = uint32(len(r.Overlay.Indices))
		if err = vr.createSingleUniformSets(res, vr.overlayLayout, unsafe.Sizeof(scene.OverlayUniform{})); err != nil {
			vr.destroyResources(res)
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown renderable kind %d", r.Kind)
	}

	vr.resources[r.ID] = res
	return res, nil
}

func (vr *VulkanRenderer) createMeshGeometry(res *renderableResources, vertices []math.Vertex3D, indices []uint32) error {
	var err error
	if res.vertexBuf, err = BufferCreateDeviceLocal(vr.context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), vertex3DBytes(vertices)); err != nil {
		return err
	}
	if res.indexBuf, err = BufferCreateDeviceLocal(vr.context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), indexBytes(indices)); err != nil {
		vr.destroyResources(res)
		return err
	}
	res.indexCount = uint32(len(indices))
	return nil
}

// createSingleUniformSets wires the one-block layouts used by the marker and
// overlay passes: a uniform buffer and a descriptor set per slot.
func (vr *VulkanRenderer) createSingleUniformSets(res *renderableResources, layout vk.DescriptorSetLayout, blockSize uintptr) error {
	for slot := 0; slot < vr.slotCount; slot++ {
		buf, err := vr.createUniformBuffer(blockSize)
		if err != nil {
			return err
		}
		res.uniformBufs[slot] = []*VulkanBuffer{buf}

		set, err := DescriptorSetAllocate(vr.context, vr.descriptorPool, layout)
		if err != nil {
			return err
		}
		DescriptorWriteBuffer(vr.context, set, singleUniformBinding, buf)
		res.descriptorSets[slot] = set
	}
	return nil
}

func (vr *VulkanRenderer) createUniformBuffer(size uintptr) (*VulkanBuffer, error) {
	return BufferCreate(vr.context, vk.DeviceSize(size),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
}

func (vr *VulkanRenderer) destroyResources(res *renderableResources) {
	res.vertexBuf.Destroy(vr.context)
	res.indexBuf.Destroy(vr.context)
	res.texture.Destroy(vr.context)
	for slot := 0; slot < vr.slotCount; slot++ {
		for _, buf := range res.uniformBufs[slot] {
			buf.Destroy(vr.context)
		}
		if res.descriptorSets[slot] != vk.NullDescriptorSet {
			vk.FreeDescriptorSets(vr.context.Device.LogicalDevice, vr.descriptorPool, 1, &res.descriptorSets[slot])
		}
	}
}

func vertex3DBytes(vertices []math.Vertex3D) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(vertices[0])))
}

func vertex2DBytes(vertices []math.Vertex2D) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(unsafe.Sizeof(vertices[0])))
}

func indexBytes(indices []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
