package config

import (
	"os"
	"path/filepath"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vm "renderbase/vector_math"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renderbase.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, int32(1440), cfg.Window.Width)
	assert.Equal(t, 2, cfg.Renderer.FramesInFlight)
	assert.Equal(t, filepath.Join(dir, "shaders_spv/vert.spv"), cfg.Renderer.VertShader)
	assert.Equal(t, DefaultObjects(), cfg.World.Objects)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "demo"
width = 640
height = 480

[renderer]
frames_in_flight = 3
present_mode = "fifo"
clear_color = [0.2, 0.3, 0.4, 1.0]

[camera]
position = [1.0, 2.0, 3.0]

[world]
materials = "materials/stone.json"

[[world.objects]]
name = "teapot"
mesh = "models/teapot.stl"
material = "Stone"
positions = [[0.0, 0.0, 0.0], [2.0, 0.0, 0.0]]

[[world.objects]]
name = "marker"
mesh = "triangle"
style = "wireframe"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	dir := filepath.Dir(path)

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 3, cfg.Renderer.FramesInFlight)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 1}, cfg.Renderer.ClearColor)
	assert.Equal(t, filepath.Join(dir, "materials/stone.json"), cfg.World.Materials)
	assert.Equal(t, "shaders_spv/frag.spv", mustRel(t, dir, cfg.Renderer.FragShader))

	require.Len(t, cfg.World.Objects, 2)
	teapot := cfg.World.Objects[0]
	assert.True(t, teapot.IsSTL())
	assert.Equal(t, filepath.Join(dir, "models/teapot.stl"), teapot.Mesh)
	assert.Equal(t, []vm.Vec3{{}, {X: 2}}, teapot.PositionVecs())
	assert.Equal(t, "triangle", cfg.World.Objects[1].Mesh, "built-in meshes are not paths")
	assert.False(t, cfg.World.Objects[1].IsFile())

	cam := cfg.Camera.ModelConfig()
	assert.Equal(t, vm.Vec3{X: 1, Y: 2, Z: 3}, cam.Position)
	assert.Equal(t, float32(45), cam.Fov, "unset keys keep their default")

	mode, err := cfg.Renderer.VkPresentMode()
	require.NoError(t, err)
	assert.Equal(t, vk.PresentModeFifo, mode)
}

func mustRel(t *testing.T, base, target string) string {
	t.Helper()
	rel, err := filepath.Rel(base, target)
	require.NoError(t, err)
	return filepath.ToSlash(rel)
}

func TestUnknownKeysAreRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "[window]\nwidht = 100\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":        func(c *Config) { c.Window.Width = 0 },
		"no frames":         func(c *Config) { c.Renderer.FramesInFlight = 0 },
		"present mode":      func(c *Config) { c.Renderer.PresentMode = "vsync" },
		"clip range":        func(c *Config) { c.Camera.Far = c.Camera.Near },
		"style":             func(c *Config) { c.World.Objects[0].Style = "dotted" },
		"mesh":              func(c *Config) { c.World.Objects[0].Mesh = "sphere" },
		"unnamed object":    func(c *Config) { c.World.Objects[0].Name = "" },
		"duplicate objects": func(c *Config) { c.World.Objects[1].Name = c.World.Objects[0].Name },
	}
	for name, mutate := range cases {
		cfg := Default()
		cfg.World.Objects = DefaultObjects()
		require.NoError(t, cfg.Validate(), name)
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestModelFilesAreMeshes(t *testing.T) {
	for _, mesh := range []string{"models/Teapot.obj", "models/part.STL"} {
		cfg := Default()
		cfg.World.Objects = []Object{{Name: "model", Mesh: mesh}}
		assert.NoError(t, cfg.Validate(), mesh)
		assert.True(t, cfg.World.Objects[0].IsFile(), mesh)
	}
	assert.True(t, Object{Mesh: "a.obj"}.IsOBJ())
	assert.False(t, Object{Mesh: "a.obj"}.IsSTL())
}

func TestHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	require.NoError(t, os.WriteFile(filepath.Join(home, "rb.toml"), []byte("[window]\ntitle = \"home\"\n"), 0o644))

	cfg, err := Load("~/rb.toml")
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Window.Title)
	assert.Equal(t, filepath.Join(home, "shaders_spv/vert.spv"), cfg.Renderer.VertShader)
}
