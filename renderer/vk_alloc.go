package renderer

import (
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	com "renderbase/common"
)

// CreateGeometry moves vertex and index data into device local buffers through host visible staging buffers.
func (b *VulkanBackend) CreateGeometry(vertices, indices []byte) (GeometryHandles, error) {
	vertBuf, err := b.uploadDeviceLocal(vertices, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return GeometryHandles{}, fmt.Errorf("vertex buffer: %w", err)
	}
	idxBuf, err := b.uploadDeviceLocal(indices, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		com.DestroyBuffer(b.device, vertBuf)
		return GeometryHandles{}, fmt.Errorf("index buffer: %w", err)
	}
	b.nextID++
	h := GeometryHandles{
		ID:           b.nextID,
		VertexBuffer: vertBuf.Handle,
		VertexMem:    vertBuf.DeviceMem,
		IndexBuffer:  idxBuf.Handle,
		IndexMem:     idxBuf.DeviceMem,
	}
	log.Printf("Created geometry #%d (vertices: %d Byte, indices: %d Byte)", h.ID, len(vertices), len(indices))
	return h, nil
}

func (b *VulkanBackend) DestroyGeometry(h GeometryHandles) {
	vk.DestroyBuffer(b.device.D, h.IndexBuffer, nil)
	vk.FreeMemory(b.device.D, h.IndexMem, nil)
	vk.DestroyBuffer(b.device.D, h.VertexBuffer, nil)
	vk.FreeMemory(b.device.D, h.VertexMem, nil)
}

func (b *VulkanBackend) uploadDeviceLocal(payload []byte, usage vk.BufferUsageFlags) (*com.Buffer, error) {
	bufSize := vk.DeviceSize(len(payload))
	stgBuf, err := com.CreateBuffer(
		b.device,
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, err
	}
	defer com.DestroyBuffer(b.device, stgBuf)

	if err := com.CopyToDeviceBuffer(b.device, stgBuf, payload); err != nil {
		return nil, err
	}

	dst, err := com.CreateBuffer(
		b.device,
		bufSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}
	if err := b.copyBuffer(stgBuf, dst, bufSize); err != nil {
		com.DestroyBuffer(b.device, dst)
		return nil, err
	}
	return dst, nil
}
