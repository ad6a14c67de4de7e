package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	vm "renderbase/vector_math"
)

func TestMeshBytes(t *testing.T) {
	m := NewTriangleMesh("triangle")
	assert.NoError(t, m.Validate())
	assert.Equal(t, uint32(3), m.IndexCount())
	assert.Len(t, m.VertexBytes(), 3*24)
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0}, m.IndexBytes())
}

func TestMeshValidateEmpty(t *testing.T) {
	err := NewMesh("empty", nil, []uint16{0}).Validate()
	assert.True(t, errors.Is(err, ErrEmptyMesh))
	err = NewMesh("no-indices", []Vertex{{}}, nil).Validate()
	assert.True(t, errors.Is(err, ErrEmptyMesh))
}

func TestMeshTint(t *testing.T) {
	m := NewCubeMesh("cube")
	red := vm.Vec3{X: 1}
	m.Tint(red)
	for _, v := range m.Vertices {
		assert.Equal(t, red, v.Color)
	}
}

func TestWireFormatSizes(t *testing.T) {
	assert.Equal(t, uint32(64), PushConstantsSize())
	assert.EqualValues(t, 64, SizeOfUbo())

	pc := NewInstancePushConstants(vm.Vec3{X: 2, Y: 2, Z: 2})
	assert.Equal(t, vm.Translation(vm.Vec3{X: 2, Y: 2, Z: 2}), pc.Model)
	assert.Len(t, pc.Bytes(), 64)
}

func TestVertexLayout(t *testing.T) {
	b := GetVertexBindingDescription()
	assert.Equal(t, uint32(24), b.Stride)
	attrs := GetVertexAttributeDescriptions()
	assert.Len(t, attrs, 2)
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, uint32(12), attrs[1].Offset)
}
