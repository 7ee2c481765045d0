package mesh

import "github.com/Faultbox/meshforge/pkg/math"

// DebugLines builds line-list vertex data visualizing the normal and tangent
// of every vertex in a welded buffer. Each vertex contributes one segment of
// two xyz points: the position and the position offset by scale along the
// direction.
func DebugLines(vertices []float32, l Layout, scale float32) (normals, tangents []float32) {
	count := l.VertexCount(len(vertices))
	normals = make([]float32, 0, count*6)
	tangents = make([]float32, 0, count*6)

	for v := 0; v < count; v++ {
		base := v * l.Stride
		pos := math.Vec3From(vertices, base+l.PositionOffset)
		n := math.Vec3From(vertices, base+l.NormalOffset)
		t := math.Vec3From(vertices, base+l.TangentOffset)

		normals = appendSegment(normals, pos, pos.Add(n.Scale(scale)))
		tangents = appendSegment(tangents, pos, pos.Add(t.Scale(scale)))
	}
	return normals, tangents
}

func appendSegment(dst []float32, from, to math.Vec3) []float32 {
	return append(dst, from.X, from.Y, from.Z, to.X, to.Y, to.Z)
}
