// Package config loads renderbase.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"renderbase/model"
	vm "renderbase/vector_math"
)

const DefaultPath = "renderbase.toml"

type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Camera   Camera   `toml:"camera"`
	World    World    `toml:"world"`
}

type Window struct {
	Title  string `toml:"title"`
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`
}

type Renderer struct {
	FramesInFlight int        `toml:"frames_in_flight"`
	Validation     bool       `toml:"validation"`
	VertShader     string     `toml:"vert_shader"`
	FragShader     string     `toml:"frag_shader"`
	ClearColor     [4]float32 `toml:"clear_color"`
	PresentMode    string     `toml:"present_mode"`
}

type Camera struct {
	Fov         float32    `toml:"fov"`
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
	Position    [3]float32 `toml:"position"`
	MoveSpeed   float32    `toml:"move_speed"`
	Sensitivity float32    `toml:"sensitivity"`
}

type World struct {
	Materials string   `toml:"materials"`
	Objects   []Object `toml:"objects"`
}

// Object is one entity of the initial world. Mesh is a built-in name or a path to a binary STL or a Wavefront
// OBJ file.
type Object struct {
	Name      string       `toml:"name"`
	Mesh      string       `toml:"mesh"`
	Material  string       `toml:"material"`
	Style     string       `toml:"style"`
	Positions [][3]float32 `toml:"positions"`
}

// Built-in meshes available to Object.Mesh.
const (
	MeshTriangle = "triangle"
	MeshCube     = "cube"
	MeshGrid     = "grid"
	MeshRay      = "ray"
)

func (o Object) IsSTL() bool {
	return strings.EqualFold(filepath.Ext(o.Mesh), ".stl")
}

func (o Object) IsOBJ() bool {
	return strings.EqualFold(filepath.Ext(o.Mesh), ".obj")
}

// IsFile reports whether Mesh names a model file instead of a built-in mesh.
func (o Object) IsFile() bool {
	return o.IsSTL() || o.IsOBJ()
}

func Default() Config {
	cam := model.DefaultCameraConfig()
	return Config{
		Window: Window{
			Title:  "Clever",
			Width:  1440,
			Height: 810,
		},
		Renderer: Renderer{
			FramesInFlight: 2,
			VertShader:     "shaders_spv/vert.spv",
			FragShader:     "shaders_spv/frag.spv",
			ClearColor:     [4]float32{0.01, 0.01, 0.01, 1},
			PresentMode:    "mailbox",
		},
		Camera: Camera{
			Fov:         cam.Fov,
			Near:        cam.Near,
			Far:         cam.Far,
			Position:    [3]float32{cam.Position.X, cam.Position.Y, cam.Position.Z},
			MoveSpeed:   cam.MoveSpeed,
			Sensitivity: cam.Sensitivity,
		},
	}
}

// DefaultObjects is the world used when the config lists no objects.
func DefaultObjects() []Object {
	return []Object{
		{Name: "grid", Mesh: MeshGrid, Style: "wireframe", Positions: [][3]float32{{0, -1, 0}}},
		{Name: "cube", Mesh: MeshCube, Positions: [][3]float32{{0, 0, 0}}},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file yields the defaults. Relative
// asset paths are resolved against the directory of the file.
func Load(path string) (Config, error) {
	cfg := Default()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("expand config path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("No config file at %s, using defaults", expanded)
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", expanded, err)
		}
		log.Printf("Loaded config %s", expanded)
	}
	if len(cfg.World.Objects) == 0 {
		cfg.World.Objects = DefaultObjects()
	}
	if err := cfg.resolvePaths(filepath.Dir(expanded)); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) resolvePaths(dir string) error {
	resolve := func(p *string) error {
		if *p == "" {
			return nil
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return err
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(dir, expanded)
		}
		*p = expanded
		return nil
	}
	if err := resolve(&c.Renderer.VertShader); err != nil {
		return err
	}
	if err := resolve(&c.Renderer.FragShader); err != nil {
		return err
	}
	if err := resolve(&c.World.Materials); err != nil {
		return err
	}
	for i := range c.World.Objects {
		if c.World.Objects[i].IsFile() {
			if err := resolve(&c.World.Objects[i].Mesh); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.FramesInFlight < 1 {
		errs = append(errs, fmt.Errorf("frames_in_flight must be at least 1, got %d", c.Renderer.FramesInFlight))
	}
	if _, err := c.Renderer.VkPresentMode(); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip range [%g, %g]", c.Camera.Near, c.Camera.Far))
	}
	names := map[string]bool{}
	for i, o := range c.World.Objects {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("object %d has no name", i))
		} else if names[o.Name] {
			errs = append(errs, fmt.Errorf("duplicate object %q", o.Name))
		}
		names[o.Name] = true
		switch o.Style {
		case "", "solid", "wireframe":
		default:
			errs = append(errs, fmt.Errorf("object %q: unknown style %q", o.Name, o.Style))
		}
		switch o.Mesh {
		case MeshTriangle, MeshCube, MeshGrid, MeshRay:
		default:
			if !o.IsFile() {
				errs = append(errs, fmt.Errorf("object %q: unknown mesh %q", o.Name, o.Mesh))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (r Renderer) VkPresentMode() (vk.PresentMode, error) {
	switch r.PresentMode {
	case "", "mailbox":
		return vk.PresentModeMailbox, nil
	case "fifo":
		return vk.PresentModeFifo, nil
	case "immediate":
		return vk.PresentModeImmediate, nil
	default:
		return vk.PresentModeFifo, fmt.Errorf("unknown present mode %q", r.PresentMode)
	}
}

func (c Camera) ModelConfig() model.CameraConfig {
	return model.CameraConfig{
		Position:    vm.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]},
		Fov:         c.Fov,
		Near:        c.Near,
		Far:         c.Far,
		MoveSpeed:   c.MoveSpeed,
		Sensitivity: c.Sensitivity,
	}
}

func (o Object) PositionVecs() []vm.Vec3 {
	ps := make([]vm.Vec3, len(o.Positions))
	for i, p := range o.Positions {
		ps[i] = vm.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	return ps
}
