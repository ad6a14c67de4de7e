package renderer

import "renderbase/model"

// GeometryBuffer is a mesh living in device local vertex and index buffers.
type GeometryBuffer struct {
	name       string
	factory    ResourceFactory
	handles    GeometryHandles
	indexCount uint32
	released   bool
}

// UploadGeometry copies the mesh into device memory. It fails with a *ResourceCreationError for meshes without
// vertices or indices and when the factory can not create the buffers.
func UploadGeometry(f ResourceFactory, m *model.Mesh) (*GeometryBuffer, error) {
	if err := m.Validate(); err != nil {
		return nil, creationError("geometry "+m.Name, err)
	}
	h, err := f.CreateGeometry(m.VertexBytes(), m.IndexBytes())
	if err != nil {
		return nil, creationError("geometry "+m.Name, err)
	}
	return &GeometryBuffer{
		name:       m.Name,
		factory:    f,
		handles:    h,
		indexCount: m.IndexCount(),
	}, nil
}

func (g *GeometryBuffer) Name() string {
	return g.name
}

func (g *GeometryBuffer) IndexCount() uint32 {
	return g.indexCount
}

func (g *GeometryBuffer) Handles() GeometryHandles {
	return g.handles
}

func (g *GeometryBuffer) Released() bool {
	return g.released
}

// Release frees the device buffers. Further calls do nothing.
func (g *GeometryBuffer) Release() {
	if g.released {
		return
	}
	g.factory.DestroyGeometry(g.handles)
	g.handles = GeometryHandles{}
	g.released = true
}
