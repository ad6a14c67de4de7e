package common

import (
	"errors"
	"fmt"
	"log"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
}

var ErrZeroSize = errors.New("zero sized allocation")

func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	// Buffer Handle of fitting Size
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(dc.D, &bufferInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create buffer handle: %w", err)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.D, buf)
	memType, err := findMemoryType(dc, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}

	// Allocate device memory
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, fmt.Errorf("allocate buffer memory: %w", err)
	}

	// Associate allocated memory with buffer Handle
	if err := VkBindBufferMemory(dc.D, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, fmt.Errorf("bind buffer memory: %w", err)
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

func (b *Buffer) hostCoherent() bool {
	want := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	return b.props&want == want
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to be
// vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit and the payload to fill it completely.
func CopyToDeviceBuffer(dc *Device, deviceBuf *Buffer, payload []byte) error {
	if !deviceBuf.hostCoherent() {
		return errors.New("buffer memory is not host visible and coherent")
	}
	// This function only allows to copy a "full buffer" worth of payload starting at offset = 0
	if deviceBuf.Size != vk.DeviceSize(uint64(len(payload))) {
		return fmt.Errorf("buffer (%d Byte) and payload (%d Byte) not of equal size", deviceBuf.Size, len(payload))
	}
	// Map -> copy -> Unmap
	pData, err := VkMapMemory(dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return fmt.Errorf("map device memory: %w", err)
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.D, deviceBuf.DeviceMem)
	return nil
}

// MapPersistent maps the whole buffer once. The mapping stays valid until the buffer is destroyed.
func MapPersistent(dc *Device, deviceBuf *Buffer) (unsafe.Pointer, error) {
	if !deviceBuf.hostCoherent() {
		return nil, errors.New("buffer memory is not host visible and coherent")
	}
	return VkMapMemory(dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
}

func DestroyBuffer(dc *Device, buffer *Buffer) {
	vk.DestroyBuffer(dc.D, buffer.Handle, nil)
	vk.FreeMemory(dc.D, buffer.DeviceMem, nil)
}

// Image is a device local image with its memory and a single view on it.
type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	View      vk.ImageView
	Format    vk.Format
}

func CreateImage(dc *Device, w uint32, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags, aspect vk.ImageAspectFlags) (*Image, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                tiling,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.D, imageInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}

	memRequirements := ReadImageMemoryRequirements(dc.D, img)
	memType, err := findMemoryType(dc, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.D, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, fmt.Errorf("allocate image memory: %w", err)
	}
	if err := VkBindImageMemory(dc.D, img, imgMemory, 0); err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, fmt.Errorf("bind image memory: %w", err)
	}
	view, err := VKSCreate2DImageView(dc.D, img, format, aspect)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, fmt.Errorf("create image view: %w", err)
	}
	return &Image{
		Handle:    img,
		DeviceMem: imgMemory,
		View:      view,
		Format:    format,
	}, nil
}

func DestroyImage(dc *Device, img *Image) {
	vk.DestroyImageView(dc.D, img.View, nil)
	vk.DestroyImage(dc.D, img.Handle, nil)
	vk.FreeMemory(dc.D, img.DeviceMem, nil)
}

func findMemoryType(dc *Device, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	idx, ok := selectMemoryType(dc.PdMemoryProps.MemoryTypes[:dc.PdMemoryProps.MemoryTypeCount], typeFilter, propFlags)
	if !ok {
		return 0, fmt.Errorf("no memory type in filter %b with properties %b", typeFilter, propFlags)
	}
	log.Printf("Found memory type -> %d on heap %d", idx, dc.PdMemoryProps.MemoryTypes[idx].HeapIndex)
	return idx, nil
}

func selectMemoryType(types []vk.MemoryType, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, bool) {
	for i := range types {
		ofType := (typeFilter & (1 << uint32(i))) > 0
		hasProperties := types[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return uint32(i), true
		}
	}
	return 0, false
}
