package model

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	vm "renderbase/vector_math"
)

// Vertex is the fixed vertex format of every pipeline: a position and a colour triple. Meshes loaded
// from STL carry the facet normal in Color.
type Vertex struct {
	Pos   vm.Vec3
	Color vm.Vec3
}

func GetVertexBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func GetVertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Location: 0,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Location: 1,
			Binding:  0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}
