package mesh

// vertexKey identifies a unique combination of attribute indices.
type vertexKey struct {
	position, normal, texCoord, tangent, color uint32
}

// VertexBuffer is the result of welding: one interleaved vertex buffer and a
// compact index list per fragment.
type VertexBuffer struct {
	Vertices []float32
	Layout   Layout
	Indices  [][]uint32 // parallel to the welded fragments
}

// VertexCount returns the number of vertices in the buffer.
func (b *VertexBuffer) VertexCount() int {
	return b.Layout.VertexCount(len(b.Vertices))
}

// Weld merges triangle corners that reference the same five attribute
// indices into one output vertex. Vertex ids are assigned in first-seen order
// across all fragments.
//
// All five index arrays of every fragment must have equal length and every
// index must be in range for its stream; this is not checked.
func Weld(a Attributes, frags []Fragment) *VertexBuffer {
	layout := NewLayout(a.PositionStride(), a.TexCoordStride())

	ids := make(map[vertexKey]uint32)
	var vertices []float32
	indices := make([][]uint32, len(frags))

	for f := range frags {
		frag := &frags[f]
		list := make([]uint32, 0, len(frag.PositionIndices))

		for i := range frag.PositionIndices {
			key := vertexKey{
				position: frag.PositionIndices[i],
				normal:   frag.NormalIndices[i],
				texCoord: frag.TexCoordIndices[i],
				tangent:  frag.TangentIndices[i],
				color:    frag.ColorIndices[i],
			}

			id, ok := ids[key]
			if !ok {
				id = uint32(len(ids))
				ids[key] = id
				vertices = appendVertex(vertices, a, layout, key)
			}
			list = append(list, id)
		}
		indices[f] = list
	}

	return &VertexBuffer{
		Vertices: vertices,
		Layout:   layout,
		Indices:  indices,
	}
}

// appendVertex appends the interleaved attributes addressed by key.
func appendVertex(dst []float32, a Attributes, l Layout, key vertexKey) []float32 {
	p := int(key.position) * l.PositionSize
	dst = append(dst, a.Positions[p:p+l.PositionSize]...)

	n := int(key.normal) * NormalSize
	dst = append(dst, a.Normals[n:n+NormalSize]...)

	t := int(key.tangent) * TangentSize
	dst = append(dst, a.Tangents[t:t+TangentSize]...)

	uv := int(key.texCoord) * l.TexCoordSize
	dst = append(dst, a.TexCoords[uv:uv+l.TexCoordSize]...)

	c := int(key.color) * ColorSize
	return append(dst, a.Colors[c:c+ColorSize]...)
}
