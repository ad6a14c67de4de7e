// Package world owns the entities of the scene and the device resources behind them.
package world

import (
	"errors"
	"fmt"
	"log"

	"renderbase/config"
	"renderbase/ecs"
	"renderbase/material"
	"renderbase/model"
	"renderbase/obj"
	"renderbase/renderer"
	"renderbase/stl"
	vm "renderbase/vector_math"
)

const (
	RayName = "ray"
	// rays are spawned this far in front of the camera
	rayDistance float32 = 3
	gridSize    float32 = 10
)

var ErrNotFound = errors.New("entity not found")

// Tag names an entity.
type Tag struct {
	Name string
}

type World struct {
	store *ecs.Store
	ray   ecs.Entity
}

// New registers the component types of the world on the store.
func New(store *ecs.Store) *World {
	ecs.Register[Tag](store)
	ecs.Register[renderer.Renderable](store)
	return &World{store: store, ray: -1}
}

// Init creates one entity per configured object plus the ray entity, which starts without instances. On error
// everything created so far is released.
func (w *World) Init(f renderer.ResourceFactory, target renderer.RenderTarget, slots int, objs []config.Object, lib material.Library) error {
	for _, o := range objs {
		if o.Name == RayName {
			w.Destroy()
			return fmt.Errorf("object name %q is reserved", RayName)
		}
		if err := w.addObject(f, target, slots, o, lib); err != nil {
			w.Destroy()
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
	}

	ray, err := w.build(f, target, slots, model.NewRayMesh(RayName), renderer.Wireframe)
	if err != nil {
		w.Destroy()
		return fmt.Errorf("ray: %w", err)
	}
	w.ray = w.spawn(RayName, ray)
	log.Printf("World initialized with %d entities", w.store.Len())
	return nil
}

func (w *World) addObject(f renderer.ResourceFactory, target renderer.RenderTarget, slots int, o config.Object, lib material.Library) error {
	mesh, err := loadMesh(o)
	if err != nil {
		return err
	}
	if o.Material != "" {
		m, ok := lib.Lookup(o.Material)
		if !ok {
			return fmt.Errorf("unknown material %q", o.Material)
		}
		mesh.Tint(m.Color.Vec3())
	}
	style, err := renderer.ParseRasterStyle(o.Style)
	if err != nil {
		return err
	}
	r, err := w.build(f, target, slots, mesh, style)
	if err != nil {
		return err
	}
	positions := o.PositionVecs()
	r.Pipeline.SetInstanceCount(len(positions))
	for i, p := range positions {
		r.Pipeline.SetPosition(p, i)
	}
	w.spawn(o.Name, r)
	return nil
}

func loadMesh(o config.Object) (*model.Mesh, error) {
	switch o.Mesh {
	case config.MeshTriangle:
		return model.NewTriangleMesh(o.Name), nil
	case config.MeshCube:
		return model.NewCubeMesh(o.Name), nil
	case config.MeshGrid:
		return model.NewGridPlane(o.Name, gridSize), nil
	case config.MeshRay:
		return model.NewRayMesh(o.Name), nil
	}
	switch {
	case o.IsSTL():
		return stl.ReadFile(o.Mesh)
	case o.IsOBJ():
		return obj.ReadFile(o.Mesh)
	}
	return nil, fmt.Errorf("unknown mesh %q", o.Mesh)
}

func (w *World) build(f renderer.ResourceFactory, target renderer.RenderTarget, slots int, mesh *model.Mesh, style renderer.RasterStyle) (renderer.Renderable, error) {
	g, err := renderer.UploadGeometry(f, mesh)
	if err != nil {
		return renderer.Renderable{}, err
	}
	p, err := renderer.NewDrawPipeline(f, renderer.PipelineDesc{
		Name:   mesh.Name,
		Target: target,
		Slots:  slots,
		Style:  style,
	})
	if err != nil {
		g.Release()
		return renderer.Renderable{}, err
	}
	return renderer.Renderable{Geometry: g, Pipeline: p}, nil
}

func (w *World) spawn(name string, r renderer.Renderable) ecs.Entity {
	e := w.store.CreateEntity()
	// the entity was just created, both types are registered
	_ = ecs.Replace(w.store, e, Tag{Name: name})
	_ = ecs.Replace(w.store, e, r)
	return e
}

// AddRay adds one ray instance in front of the camera.
func (w *World) AddRay(cam *model.Camera) error {
	r, err := ecs.Get[renderer.Renderable](w.store, w.ray)
	if err != nil {
		return fmt.Errorf("ray: %w", err)
	}
	if r.Pipeline == nil {
		return fmt.Errorf("ray: %w", ErrNotFound)
	}
	n := r.Pipeline.InstanceCount()
	r.Pipeline.SetInstanceCount(n + 1)
	r.Pipeline.SetPosition(cam.Position().Add(cam.Front().ScalarMul(rayDistance)), n)
	return nil
}

// Find returns the renderable of the first entity with the given name. The pointer is valid until the next
// entity is created.
func (w *World) Find(name string) (*renderer.Renderable, error) {
	tags := ecs.ArrayOf[Tag](w.store)
	rs := ecs.ArrayOf[renderer.Renderable](w.store)
	for i, t := range tags {
		if t.Name == name {
			return &rs[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
}

func (w *World) Renderables() []renderer.Renderable {
	return ecs.ArrayOf[renderer.Renderable](w.store)
}

// Positions lists the instance positions of the named entity.
func (w *World) Positions(name string) ([]vm.Vec3, error) {
	r, err := w.Find(name)
	if err != nil {
		return nil, err
	}
	if r.Pipeline == nil {
		return nil, nil
	}
	ps := make([]vm.Vec3, r.Pipeline.InstanceCount())
	for i := range ps {
		ps[i], _ = r.Pipeline.Position(i)
	}
	return ps, nil
}

// Destroy releases the device resources of every entity. The device must be idle.
func (w *World) Destroy() {
	for _, r := range ecs.ArrayOf[renderer.Renderable](w.store) {
		r.Release()
	}
}
