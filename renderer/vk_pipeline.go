package renderer

import (
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	com "renderbase/common"
	"renderbase/model"
)

const wireframeLineWidth = 4.0

// CreatePipeline builds, in this order, descriptor set layout, descriptor pool, descriptor sets, pipeline layout
// and graphics pipeline. Whatever was created before a failing step is destroyed again.
func (b *VulkanBackend) CreatePipeline(desc PipelineDesc) (PipelineHandles, error) {
	if desc.Slots <= 0 || desc.Slots != len(desc.Target.UniformBuffers) {
		return PipelineHandles{}, fmt.Errorf("%d slots for %d uniform buffers", desc.Slots, len(desc.Target.UniformBuffers))
	}
	dp := descriptorProvisioner{device: b.device.D}
	var h PipelineHandles
	var err error

	if h.SetLayout, err = dp.createSetLayout(); err != nil {
		return PipelineHandles{}, fmt.Errorf("descriptor set layout: %w", err)
	}
	if h.Pool, err = dp.createPool(uint32(desc.Slots)); err != nil {
		b.DestroyPipeline(h)
		return PipelineHandles{}, fmt.Errorf("descriptor pool: %w", err)
	}
	if h.Sets, err = dp.allocSets(h.Pool, h.SetLayout, desc.Target); err != nil {
		b.DestroyPipeline(h)
		return PipelineHandles{}, fmt.Errorf("descriptor sets: %w", err)
	}
	if h.Layout, err = b.createPipelineLayout(h.SetLayout); err != nil {
		b.DestroyPipeline(h)
		return PipelineHandles{}, fmt.Errorf("pipeline layout: %w", err)
	}
	if h.Pipeline, err = b.createGraphicsPipeline(h.Layout, desc); err != nil {
		b.DestroyPipeline(h)
		return PipelineHandles{}, fmt.Errorf("graphics pipeline: %w", err)
	}
	b.nextID++
	h.ID = b.nextID
	log.Printf("Successfully created %s pipeline %q (#%d)", desc.Style, desc.Name, h.ID)
	return h, nil
}

// DestroyPipeline tolerates partially built handles. Destroying the pool frees the sets.
func (b *VulkanBackend) DestroyPipeline(h PipelineHandles) {
	if h.SetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(b.device.D, h.SetLayout, nil)
	}
	if h.Pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(b.device.D, h.Pool, nil)
	}
	if h.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(b.device.D, h.Layout, nil)
	}
	if h.Pipeline != vk.NullPipeline {
		vk.DestroyPipeline(b.device.D, h.Pipeline, nil)
	}
}

func (b *VulkanBackend) createPipelineLayout(setLayout vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	// the model matrix of every instance travels as push constant
	modelPushConstantRange := vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       model.PushConstantsSize(),
	}
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{setLayout},
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{modelPushConstantRange},
	}
	return com.VkCreatePipelineLayout(b.device.D, &pipelineLayoutInfo, nil)
}

func (b *VulkanBackend) createGraphicsPipeline(layout vk.PipelineLayout, desc PipelineDesc) (vk.Pipeline, error) {
	// Shader modules can be deleted right after pipeline creation
	vertShaderMod, vertStageInfo, err := loadShaderStage(b.device.D, b.vertCode, vk.ShaderStageVertexBit)
	if err != nil {
		return vk.NullPipeline, err
	}
	defer deleteShaderMod(b.device.D, vertShaderMod)
	fragShaderMod, fragStageInfo, err := loadShaderStage(b.device.D, b.fragCode, vk.ShaderStageFragmentBit)
	if err != nil {
		return vk.NullPipeline, err
	}
	defer deleteShaderMod(b.device.D, fragShaderMod)
	shaderStages := []vk.PipelineShaderStageCreateInfo{vertStageInfo, fragStageInfo}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		PNext:             nil,
		Flags:             0,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	bindingDesc := []vk.VertexInputBindingDescription{model.GetVertexBindingDescription()}
	attributeDesc := model.GetVertexAttributeDescriptions()
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		PNext:                           nil,
		Flags:                           0,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      bindingDesc,
		VertexAttributeDescriptionCount: uint32(len(attributeDesc)),
		PVertexAttributeDescriptions:    attributeDesc,
	}
	inputAssemblyInfo := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewportStateInfo := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		PNext:         nil,
		Flags:         0,
		ViewportCount: 1,
		PViewports:    nil,
		ScissorCount:  1,
		PScissors:     nil,
	}
	polygonMode, lineWidth := rasterMode(desc.Style, b.device.WideLines)
	rasterizerInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             polygonMode,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               lineWidth,
	}
	multisamplingInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	colorBlendAttachmentInfo := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlendingInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		PNext:           nil,
		Flags:           0,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentInfo},
		BlendConstants:  [4]float32{0, 0, 0, 0},
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               nil,
		Flags:               0,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssemblyInfo,
		PTessellationState:  nil,
		PViewportState:      &viewportStateInfo,
		PRasterizationState: &rasterizerInfo,
		PMultisampleState:   &multisamplingInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendingInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              layout,
		RenderPass:          desc.Target.RenderPass,
		Subpass:             0,
		BasePipelineHandle:  nil,
		BasePipelineIndex:   -1,
	}
	pipelines, err := com.VkCreateGraphicsPipelines(b.device.D, nil, 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil)
	if err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}

// rasterMode maps a style to polygon mode and line width. Lines wider than 1 need the wideLines feature.
func rasterMode(style RasterStyle, wideLines bool) (vk.PolygonMode, float32) {
	if style != Wireframe {
		return vk.PolygonModeFill, 1
	}
	if wideLines {
		return vk.PolygonModeLine, wireframeLineWidth
	}
	return vk.PolygonModeLine, 1
}
