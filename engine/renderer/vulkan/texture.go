package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanTexture is a sampled RGBA8 image resident on the device.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
}

// TextureCreate uploads tightly packed RGBA8 pixels through a staging buffer
// and transitions the image for fragment shader sampling.
func TextureCreate(context *VulkanContext, width, height uint32, pixels []byte) (*VulkanTexture, error) {
	expected := int(width) * int(height) * 4
	if len(pixels) != expected {
		return nil, fmt.Errorf("texture pixel data is %d bytes, want %d for %dx%d RGBA", len(pixels), expected, width, height)
	}

	staging, err := BufferCreate(context, vk.DeviceSize(len(pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, pixels); err != nil {
		return nil, err
	}

	image, err := ImageCreate(context,
		vk.ImageType2d,
		width, height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	texture := &VulkanTexture{Image: image}

	cb, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}
	if err := image.ImageTransitionLayout(context, cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		texture.Destroy(context)
		return nil, err
	}
	image.ImageCopyFromBuffer(cb, staging.Handle)
	if err := image.ImageTransitionLayout(context, cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		texture.Destroy(context)
		return nil, err
	}
	if err := cb.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		texture.Destroy(context)
		return nil, err
	}

	samplerCreateInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerCreateInfo, context.Allocator, &sampler); res != vk.Success {
		texture.Destroy(context)
		return nil, fmt.Errorf("failed to create texture sampler: %s", VulkanResultString(res))
	}
	texture.Sampler = sampler

	return texture, nil
}

// TextureCreateDefault makes the 1x1 white texture bound for untextured
// materials, so the lit pipeline always has a valid sampler.
func TextureCreateDefault(context *VulkanContext) (*VulkanTexture, error) {
	return TextureCreate(context, 1, 1, []byte{255, 255, 255, 255})
}

func (vt *VulkanTexture) Destroy(context *VulkanContext) {
	if vt == nil {
		return
	}
	if vt.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, vt.Sampler, context.Allocator)
		vt.Sampler = vk.NullSampler
	}
	if vt.Image != nil {
		vt.Image.ImageDestroy(context)
		vt.Image = nil
	}
}
