package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	vm "renderbase/vector_math"
)

// Mesh is CPU side geometry ready to be uploaded: vertices plus 16 bit indices. Index values are
// expected to be smaller than len(Vertices), this is not checked.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint16
}

func NewMesh(name string, v []Vertex, id []uint16) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: v,
		Indices:  id,
	}
}

var ErrEmptyMesh = errors.New("mesh has no vertices or no indices")

func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("mesh '%s': %w", m.Name, ErrEmptyMesh)
	}
	return nil
}

func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// VertexBytes returns the raw bytes representing all vertices, tightly packed little endian float32.
func (m *Mesh) VertexBytes() []byte {
	return rawBytes(m.Vertices)
}

// IndexBytes returns the raw bytes of the index list as consumed by vk.IndexTypeUint16.
func (m *Mesh) IndexBytes() []byte {
	return rawBytes(m.Indices)
}

// Tint overwrites the colour of every vertex.
func (m *Mesh) Tint(c vm.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}

func rawBytes(p interface{}) []byte {
	buf := new(bytes.Buffer)
	// Only fixed size slices are passed in here, binary.Write can not fail for them
	_ = binary.Write(buf, binary.LittleEndian, p)
	return buf.Bytes()
}
