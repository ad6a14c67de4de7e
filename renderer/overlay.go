package renderer

import vk "github.com/goki/vulkan"

// Overlay supplies an additional, already recorded command buffer for a frame slot. It is submitted together with
// the frame's own buffer.
type Overlay interface {
	CommandBuffer(slot int) (vk.CommandBuffer, bool)
}
