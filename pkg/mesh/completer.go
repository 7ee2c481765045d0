package mesh

// Fallback attribute values.
var (
	defaultColor   = [ColorSize]float32{1, 1, 1, 1}
	defaultTangent = [TangentSize]float32{1, 0, 0, 1}
)

// InsertColors gives a mesh without colors a single opaque white color and
// points every corner at it. Meshes that already have colors are returned
// unchanged.
func InsertColors(a Attributes, frags []Fragment) (Attributes, []Fragment) {
	if len(a.Colors) > 0 {
		return a, frags
	}

	a.Colors = append([]float32(nil), defaultColor[:]...)

	out := cloneFragments(frags)
	for i := range out {
		out[i].ColorIndices = zeroIndices(len(out[i].PositionIndices))
	}
	return a, out
}

// InsertTexCoords synthesizes texture coordinates for a mesh that has none by
// projecting each normal onto the XY plane: u = (nx+1)/2, v = (ny+1)/2. The
// normal's Z component is ignored. Each fragment reuses its normal indices as
// texture coordinate indices.
func InsertTexCoords(a Attributes, frags []Fragment) (Attributes, []Fragment) {
	if len(a.TexCoords) > 0 {
		return a, frags
	}

	a.TexCoordSize = 2
	texCoords := make([]float32, 0, a.NormalCount()*2)
	for n := 0; n+NormalSize <= len(a.Normals); n += NormalSize {
		x := a.Normals[n]
		y := a.Normals[n+1]
		texCoords = append(texCoords, (x+1)/2, (y+1)/2)
	}
	a.TexCoords = texCoords

	out := cloneFragments(frags)
	for i := range out {
		out[i].TexCoordIndices = append([]uint32(nil), out[i].NormalIndices...)
	}
	return a, out
}

// DefaultTangents replaces the tangent stream with a single +X tangent of
// positive handedness and points every corner at it.
func DefaultTangents(a Attributes, frags []Fragment) (Attributes, []Fragment) {
	a.Tangents = append([]float32(nil), defaultTangent[:]...)

	out := cloneFragments(frags)
	for i := range out {
		out[i].TangentIndices = zeroIndices(len(out[i].PositionIndices))
	}
	return a, out
}
