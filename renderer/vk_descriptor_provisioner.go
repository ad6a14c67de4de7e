package renderer

import (
	vk "github.com/goki/vulkan"
	com "renderbase/common"
)

// descriptorProvisioner builds the descriptor side of one DrawPipeline: a single uniform buffer binding for the
// vertex stage and one set per frame slot, each pointing at that slot's uniform buffer.
type descriptorProvisioner struct {
	device vk.Device
}

func (dp descriptorProvisioner) createSetLayout() (vk.DescriptorSetLayout, error) {
	uboLayoutBinding := vk.DescriptorSetLayoutBinding{
		Binding:            0, // <- binding index in vert shader
		DescriptorType:     vk.DescriptorTypeUniformBuffer,
		DescriptorCount:    1,
		StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		PImmutableSamplers: nil,
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		PNext:        nil,
		Flags:        0,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{uboLayoutBinding},
	}
	return com.VkCreateDescriptorSetLayout(dp.device, &layoutInfo, nil)
}

func (dp descriptorProvisioner) createPool(slots uint32) (vk.DescriptorPool, error) {
	uboPoolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: slots,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       slots,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{uboPoolSize},
	}
	return com.VkCreateDescriptorPool(dp.device, &poolInfo, nil)
}

// allocSets allocates one set per uniform buffer of the target and writes the buffer into binding 0.
func (dp descriptorProvisioner) allocSets(pool vk.DescriptorPool, layout vk.DescriptorSetLayout, target RenderTarget) ([]vk.DescriptorSet, error) {
	cnt := uint32(len(target.UniformBuffers))
	layouts := make([]vk.DescriptorSetLayout, cnt)
	for i := range layouts {
		layouts[i] = layout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     pool,
		DescriptorSetCount: cnt,
		PSetLayouts:        layouts,
	}
	sets, err := com.VkAllocateDescriptorSets(dp.device, &allocInfo)
	if err != nil {
		return nil, err
	}

	writes := make([]vk.WriteDescriptorSet, 0, cnt)
	for i, ub := range target.UniformBuffers {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: ub,
			Offset: 0,
			Range:  target.UniformSize,
		}
		writes = append(writes, vk.WriteDescriptorSet{
			SType:            vk.StructureTypeWriteDescriptorSet,
			PNext:            nil,
			DstSet:           sets[i],
			DstBinding:       0,
			DstArrayElement:  0,
			DescriptorCount:  1,
			DescriptorType:   vk.DescriptorTypeUniformBuffer,
			PImageInfo:       nil,
			PBufferInfo:      []vk.DescriptorBufferInfo{bufferInfo},
			PTexelBufferView: nil,
		})
	}
	vk.UpdateDescriptorSets(dp.device, uint32(len(writes)), writes, 0, nil)
	return sets, nil
}
