package renderer

// Renderable pairs a geometry with the pipeline drawing it. Either may be nil for entities that are not drawn.
type Renderable struct {
	Geometry *GeometryBuffer
	Pipeline *DrawPipeline
}

func (r Renderable) Drawable() bool {
	return r.Geometry != nil && r.Pipeline != nil && !r.Geometry.Released() && !r.Pipeline.CleanedUp()
}

func (r Renderable) Release() {
	if r.Pipeline != nil {
		r.Pipeline.Cleanup()
	}
	if r.Geometry != nil {
		r.Geometry.Release()
	}
}
