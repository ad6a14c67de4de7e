package model

import vm "renderbase/vector_math"

// Built in meshes. All of them are small enough for 16 bit indices.

func NewTriangleMesh(name string) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{X: 0, Y: -0.5}, Color: vm.Vec3{X: 1}},
		{Pos: vm.Vec3{X: 0.5, Y: 0.5}, Color: vm.Vec3{Y: 1}},
		{Pos: vm.Vec3{X: -0.5, Y: 0.5}, Color: vm.Vec3{Z: 1}},
	}
	return NewMesh(name, v, []uint16{0, 1, 2})
}

func NewCubeMesh(name string) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, Color: vm.Vec3{X: 1, Y: 0, Z: 0}},
		{Pos: vm.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Color: vm.Vec3{X: 0, Y: 1, Z: 0}},
		{Pos: vm.Vec3{X: 0.5, Y: 0.5, Z: -0.5}, Color: vm.Vec3{X: 0, Y: 0, Z: 1}},
		{Pos: vm.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Color: vm.Vec3{X: 1, Y: 0.5, Z: 1}},
		{Pos: vm.Vec3{X: -0.5, Y: -0.5, Z: 0.5}, Color: vm.Vec3{X: 1, Y: 0.5, Z: 0.5}},
		{Pos: vm.Vec3{X: 0.5, Y: -0.5, Z: 0.5}, Color: vm.Vec3{X: 0.5, Y: 1, Z: 0.5}},
		{Pos: vm.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Color: vm.Vec3{X: 0.5, Y: 0.5, Z: 1}},
		{Pos: vm.Vec3{X: -0.5, Y: 0.5, Z: 0.5}, Color: vm.Vec3{X: 0, Y: 0.5, Z: 0}},
	}
	id := []uint16{
		2, 1, 0, 0, 3, 2, // front
		5, 1, 6, 1, 2, 6, // right
		4, 5, 6, 7, 4, 6, // back
		4, 7, 0, 0, 7, 3, // left
		0, 1, 5, 5, 4, 0, // top
		3, 7, 6, 2, 3, 6, // bottom
	}
	return NewMesh(name, v, id)
}

// NewGridPlane is a flat quad on the xz-plane spanning [-size, size].
func NewGridPlane(name string, size float32) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{X: -size, Z: -size}, Color: vm.Vec3{X: 0.3, Y: 0.3, Z: 0.3}},
		{Pos: vm.Vec3{X: -size, Z: size}, Color: vm.Vec3{X: 0.3, Y: 0.3, Z: 0.3}},
		{Pos: vm.Vec3{X: size, Z: size}, Color: vm.Vec3{X: 0.3, Y: 0.3, Z: 0.3}},
		{Pos: vm.Vec3{X: size, Z: -size}, Color: vm.Vec3{X: 0.3, Y: 0.3, Z: 0.3}},
	}
	return NewMesh(name, v, []uint16{0, 1, 2, 2, 3, 0})
}

// NewRayMesh is a vertical segment meant for the wireframe pipeline. The degenerate triangle
// 0,1,0 rasterizes as a single line in line polygon mode.
func NewRayMesh(name string) *Mesh {
	v := []Vertex{
		{Pos: vm.Vec3{Y: -1}, Color: vm.Vec3{X: 0.2, Y: 0.1, Z: 0.5}},
		{Pos: vm.Vec3{Y: 1}, Color: vm.Vec3{X: 0.1, Y: 0.7, Z: 0.5}},
	}
	return NewMesh(name, v, []uint16{0, 1, 0})
}
