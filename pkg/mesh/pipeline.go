package mesh

// StageFunc transforms an attribute set and its fragments. A StageFunc must
// not write through the slices it is given; anything it changes is returned
// as a new slice.
type StageFunc func(Attributes, []Fragment) (Attributes, []Fragment)

// Stage is a named pipeline step.
type Stage struct {
	Name  string
	Apply StageFunc
}

// Pipeline runs stages in order.
type Pipeline []Stage

// Stage names of the default pipeline.
const (
	StageColors    = "colors"
	StageNormals   = "normals"
	StageTangents  = "tangents"
	StageTexCoords = "texcoords"
)

// DefaultPipeline returns the completion stages used by Compile:
// colors, normals, tangents, then texture coordinates.
//
// Tangents run before texture coordinates are synthesized, so a mesh without
// authored texture coordinates always ends up with the default tangent.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: StageColors, Apply: InsertColors},
		{Name: StageNormals, Apply: ComputeNormals},
		{Name: StageTangents, Apply: ComputeTangents},
		{Name: StageTexCoords, Apply: InsertTexCoords},
	}
}

// Run applies every stage. If observe is non-nil it is called after each
// stage with the stage name and its output.
func (p Pipeline) Run(a Attributes, frags []Fragment, observe func(name string, a Attributes, frags []Fragment)) (Attributes, []Fragment) {
	for _, stage := range p {
		a, frags = stage.Apply(a, frags)
		if observe != nil {
			observe(stage.Name, a, frags)
		}
	}
	return a, frags
}

// Compile completes missing attributes and welds the mesh. Afterwards
// Attributes and Fragments hold the completed streams, Vertices and Layout
// hold the interleaved buffer and each Fragment.Indices addresses it.
func (m *Mesh) Compile() {
	m.CompileWith(DefaultPipeline(), nil)
}

// CompileWith is Compile with a caller-supplied pipeline and observer.
func (m *Mesh) CompileWith(p Pipeline, observe func(name string, a Attributes, frags []Fragment)) {
	attrs, frags := p.Run(m.Attributes, m.Fragments, observe)

	buf := Weld(attrs, frags)
	for i := range frags {
		frags[i].Indices = buf.Indices[i]
	}

	m.Attributes = attrs
	m.Fragments = frags
	m.Vertices = buf.Vertices
	m.Layout = buf.Layout
}
