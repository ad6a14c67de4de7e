package renderer

import (
	"log"

	vk "github.com/goki/vulkan"
	com "renderbase/common"
)

// loadShaderStage wraps SPIR-V code into a shader module and the stage info needed to bind it to a pipeline.
// The module can be destroyed right after pipeline creation.
func loadShaderStage(d vk.Device, code []byte, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint(len(code)),
		PCode:    com.AsUint32Arr(code),
	}
	mod, err := com.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	log.Printf("Created shader module for stage %d", stage)

	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               "main\x00", // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
	return mod, stageInfo, nil
}

func deleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}
