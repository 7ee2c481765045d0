// Package mesh turns raw per-attribute mesh data into welded, GPU-ready
// vertex and index buffers.
//
// A loader fills an Attributes value with flat position, normal, texture
// coordinate, tangent and color streams and a list of Fragments whose
// parallel index arrays address those streams per triangle corner. Compile
// fills in missing attributes (white colors, smoothed normals, tangents,
// projected texture coordinates) and welds identical corners into a single
// interleaved vertex buffer.
//
// Nothing in this package validates input, performs I/O or logs.
package mesh

// Component counts for the fixed-width attribute streams.
const (
	DefaultPositionSize = 3
	DefaultTexCoordSize = 2
	NormalSize          = 3
	TangentSize         = 4
	ColorSize           = 4
)

// AllGroups disables the grouping-tag filter in CountFragments and Extract.
const AllGroups = -1

// Attributes holds the raw attribute streams of a mesh.
// Any stream may be empty.
type Attributes struct {
	Positions    []float32
	PositionSize int // components per position; 0 means DefaultPositionSize
	Normals      []float32
	TexCoords    []float32
	TexCoordSize int // components per texcoord; 0 means DefaultTexCoordSize
	Tangents     []float32 // xyz + handedness sign
	Colors       []float32 // rgba
}

// PositionStride returns the number of floats per position.
func (a Attributes) PositionStride() int {
	if a.PositionSize <= 0 {
		return DefaultPositionSize
	}
	return a.PositionSize
}

// TexCoordStride returns the number of floats per texture coordinate.
func (a Attributes) TexCoordStride() int {
	if a.TexCoordSize <= 0 {
		return DefaultTexCoordSize
	}
	return a.TexCoordSize
}

// PositionCount returns the number of positions.
func (a Attributes) PositionCount() int { return len(a.Positions) / a.PositionStride() }

// NormalCount returns the number of normals.
func (a Attributes) NormalCount() int { return len(a.Normals) / NormalSize }

// TexCoordCount returns the number of texture coordinates.
func (a Attributes) TexCoordCount() int { return len(a.TexCoords) / a.TexCoordStride() }

// TangentCount returns the number of tangents.
func (a Attributes) TangentCount() int { return len(a.Tangents) / TangentSize }

// ColorCount returns the number of colors.
func (a Attributes) ColorCount() int { return len(a.Colors) / ColorSize }

// Fragment is a per-material group of triangles.
//
// The five per-corner index arrays are parallel: entry i of each describes
// the same triangle corner, and every three consecutive corners form a
// triangle. Indices is filled by welding and addresses the output vertex
// buffer.
type Fragment struct {
	Material string
	Group    int // grouping tag used by CountFragments and Extract

	PositionIndices []uint32
	NormalIndices   []uint32
	TexCoordIndices []uint32
	TangentIndices  []uint32
	ColorIndices    []uint32

	Indices []uint32
}

// CornerCount returns the number of triangle corners in the fragment.
func (f *Fragment) CornerCount() int { return len(f.PositionIndices) }

// TriangleCount returns the number of triangles in the fragment.
func (f *Fragment) TriangleCount() int { return len(f.PositionIndices) / 3 }

// Mesh is the mutable container a loader fills and Compile finalizes.
type Mesh struct {
	Attributes
	Fragments []Fragment

	// Populated by Compile.
	Vertices []float32
	Layout   Layout
}

// New returns an empty mesh with default component sizes.
func New() *Mesh {
	return &Mesh{
		Attributes: Attributes{
			PositionSize: DefaultPositionSize,
			TexCoordSize: DefaultTexCoordSize,
		},
	}
}

// VertexCount returns the number of welded output vertices.
func (m *Mesh) VertexCount() int {
	return m.Layout.VertexCount(len(m.Vertices))
}

// cloneFragments returns a shallow copy of frags so a stage can replace index
// slices without touching the caller's fragments.
func cloneFragments(frags []Fragment) []Fragment {
	out := make([]Fragment, len(frags))
	copy(out, frags)
	return out
}

// zeroIndices returns n zero indices.
func zeroIndices(n int) []uint32 {
	return make([]uint32, n)
}
