package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	vk "github.com/goki/vulkan"
)

// VulkanShaderStage is a compiled SPIR-V module paired with the stage info
// the pipeline builder consumes.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage reads a SPIR-V binary from the shader directory and wraps it
// in a module. Name is the shader base name, typeStr "vert" or "frag".
func NewShaderStage(context *VulkanContext, shaderDir, name, typeStr string, shaderStageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	fileName := filepath.Join(shaderDir, fmt.Sprintf("%s.%s.spv", name, typeStr))

	code, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to read shader module %s: %w", fileName, err)
	}
	words, err := repackSpirv(code)
	if err != nil {
		return nil, fmt.Errorf("shader module %s: %w", fileName, err)
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}

	var handle vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("failed to create shader module %s: %s", fileName, VulkanResultString(res))
	}

	stage := &VulkanShaderStage{
		Handle: handle,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageFlag,
			Module: handle,
			PName:  VulkanSafeString("main"),
		},
	}
	return stage, nil
}

func (ss *VulkanShaderStage) Destroy(context *VulkanContext) {
	if ss == nil || ss.Handle == vk.NullShaderModule {
		return
	}
	vk.DestroyShaderModule(context.Device.LogicalDevice, ss.Handle, context.Allocator)
	ss.Handle = vk.NullShaderModule
}

// repackSpirv reinterprets the file bytes as the little-endian words the
// create info expects. SPIR-V is word aligned so a ragged tail is a bad file.
func repackSpirv(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("invalid SPIR-V size %d", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}
