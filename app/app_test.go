package app

import (
	"path/filepath"
	"testing"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renderbase/config"
	"renderbase/renderer"
)

func TestFPSCounterWaitsForInterval(t *testing.T) {
	start := time.Unix(100, 0)
	f := newFPSCounter(start, time.Second)

	_, ok := f.tick(start.Add(500*time.Millisecond), renderer.FrameStats{Rendered: 30})
	assert.False(t, ok)

	line, ok := f.tick(start.Add(2*time.Second), renderer.FrameStats{Rendered: 120, Skipped: 2, Recreated: 1})
	require.True(t, ok)
	assert.Contains(t, line, "60.0 fps")
	assert.Contains(t, line, "2 skipped")
	assert.Contains(t, line, "1 swap chain recreations")
}

func TestFPSCounterReportsDeltas(t *testing.T) {
	start := time.Unix(100, 0)
	f := newFPSCounter(start, time.Second)
	_, ok := f.tick(start.Add(time.Second), renderer.FrameStats{Rendered: 50, Skipped: 3})
	require.True(t, ok)

	line, ok := f.tick(start.Add(2*time.Second), renderer.FrameStats{Rendered: 60, Skipped: 3})
	require.True(t, ok)
	assert.Contains(t, line, "10.0 fps (10 frames, 0 skipped")
}

func TestAverageFPS(t *testing.T) {
	assert.Equal(t, 0.0, averageFPS(10, 0))
	assert.Equal(t, 25.0, averageFPS(50, 2*time.Second))
}

func TestVulkanConfig(t *testing.T) {
	r := config.Default().Renderer
	r.PresentMode = "fifo"
	got, err := vulkanConfig(r)
	require.NoError(t, err)
	assert.Equal(t, vk.PresentModeFifo, got.PresentMode)
	assert.Equal(t, r.FramesInFlight, got.FramesInFlight)
	assert.Equal(t, r.ClearColor, got.ClearColor)
	assert.Equal(t, r.VertShader, got.VertShader)

	r.PresentMode = "sideways"
	_, err = vulkanConfig(r)
	assert.Error(t, err)
}

func TestLoadMaterials(t *testing.T) {
	lib, err := loadMaterials("")
	require.NoError(t, err)
	assert.Zero(t, lib.Len())

	_, err = loadMaterials(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "materials")
}
