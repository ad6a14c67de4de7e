package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(flags vk.QueueFlagBits) vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(flags), QueueCount: 1}
}

func TestPickQueueFamiliesShared(t *testing.T) {
	fams := []vk.QueueFamilyProperties{
		family(vk.QueueTransferBit),
		family(vk.QueueGraphicsBit | vk.QueueComputeBit),
	}
	q, err := pickQueueFamilies(fams, func(i uint32) bool { return i == 1 })
	require.NoError(t, err)
	assert.Equal(t, uint32(1), *q.GraphicsFamily)
	assert.Equal(t, uint32(1), *q.PresentFamily)
	assert.True(t, q.Shared())

	infos, err := q.toQueueCreateInfos()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestPickQueueFamiliesSplit(t *testing.T) {
	fams := []vk.QueueFamilyProperties{
		family(vk.QueueGraphicsBit),
		family(vk.QueueTransferBit),
	}
	q, err := pickQueueFamilies(fams, func(i uint32) bool { return i == 1 })
	require.NoError(t, err)
	assert.False(t, q.Shared())

	infos, err := q.toQueueCreateInfos()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, uint32(0), infos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(1), infos[1].QueueFamilyIndex)
}

func TestPickQueueFamiliesMissing(t *testing.T) {
	fams := []vk.QueueFamilyProperties{family(vk.QueueComputeBit)}
	_, err := pickQueueFamilies(fams, func(uint32) bool { return true })
	assert.Error(t, err)

	fams = []vk.QueueFamilyProperties{family(vk.QueueGraphicsBit)}
	_, err = pickQueueFamilies(fams, func(uint32) bool { return false })
	assert.Error(t, err)
}
