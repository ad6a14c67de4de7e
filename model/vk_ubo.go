package model

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/xlab/linmath"
	vm "renderbase/vector_math"
)

// UniformBufferObject is the full content of one frame slot's uniform buffer, bound at binding 0 of
// the vertex stage.
type UniformBufferObject struct {
	ViewProj linmath.Mat4x4
}

func SizeOfUbo() vk.DeviceSize {
	return vk.DeviceSize(unsafe.Sizeof(UniformBufferObject{}))
}

func (u *UniformBufferObject) Bytes() []byte {
	return vm.Mat4Bytes(&u.ViewProj)
}

// PushConstants is the per draw block: the model matrix of one instance.
type PushConstants struct {
	Model linmath.Mat4x4
}

// PushConstantsSize reports the size of the block declared in the pipeline layout.
func PushConstantsSize() uint32 {
	return uint32(unsafe.Sizeof(PushConstants{}))
}

func NewInstancePushConstants(pos vm.Vec3) PushConstants {
	return PushConstants{Model: vm.Translation(pos)}
}

func (p *PushConstants) Bytes() []byte {
	return vm.Mat4Bytes(&p.Model)
}

// Pointer exposes the block for vk.CmdPushConstants. The caller must keep p alive until the call
// returns.
func (p *PushConstants) Pointer() unsafe.Pointer {
	return unsafe.Pointer(&p.Model)
}
