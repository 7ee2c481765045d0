package mesh

import (
	gomath "math"

	"github.com/Faultbox/meshforge/pkg/math"
)

// ComputeTangents generates tangents along the U texture direction with a
// handedness sign in the fourth component.
//
// Slots are keyed by texture coordinate index and merged with the same
// 60 degree rule as normals, with the additional requirement that the
// handedness signs match. If the mesh has no texture coordinates the whole
// mesh gets the default tangent instead. Meshes that already have tangents
// are returned unchanged.
func ComputeTangents(a Attributes, frags []Fragment) (Attributes, []Fragment) {
	if len(a.Tangents) > 0 {
		return a, frags
	}
	if len(a.TexCoords) == 0 {
		return DefaultTangents(a, frags)
	}

	pStride := a.PositionStride()
	tStride := a.TexCoordStride()

	count := a.TexCoordCount()
	slots := newSlotArena(TangentSize, count)
	for slot := 0; slot < count; slot++ {
		slots.data[slot*TangentSize+3] = 1
	}

	out := cloneFragments(frags)
	for f := range out {
		pIdx := out[f].PositionIndices
		tIdx := out[f].TexCoordIndices
		tanIdx := make([]uint32, 0, len(pIdx))

		// Split slots are only shared between triangles of the same fragment.
		split := make(splitTable)

		for i := 0; i+2 < len(pIdx); i += 3 {
			p0 := math.Vec3From(a.Positions, int(pIdx[i])*pStride)
			p1 := math.Vec3From(a.Positions, int(pIdx[i+1])*pStride)
			p2 := math.Vec3From(a.Positions, int(pIdx[i+2])*pStride)
			st0 := math.Vec2From(a.TexCoords, int(tIdx[i])*tStride)
			st1 := math.Vec2From(a.TexCoords, int(tIdx[i+1])*tStride)
			st2 := math.Vec2From(a.TexCoords, int(tIdx[i+2])*tStride)

			dp0 := p1.Sub(p0)
			dp1 := p2.Sub(p0)
			dst0 := st1.Sub(st0)
			dst1 := st2.Sub(st0)

			sign := handedness(dst0.Cross(dst1))
			tangent := dp0.Scale(dst1.Y).Sub(dp1.Scale(dst0.Y)).Scale(sign).Normalize()

			for j := 0; j < 3; j++ {
				tanIdx = append(tanIdx, resolveTangent(slots, split, tIdx[i+j], tangent, sign))
			}
		}
		out[f].TangentIndices = tanIdx
	}

	slots.normalizeDirs()
	a.Tangents = slots.data
	return a, out
}

// handedness collapses the UV-space winding determinant to +1 or -1.
// A zero determinant takes the sign of the zero; NaN counts as positive.
func handedness(det float32) float32 {
	if det == det && gomath.Signbit(float64(det)) {
		return -1
	}
	return 1
}

// resolveTangent accumulates tangent into the slot chosen for texture
// coordinate base and returns that slot.
func resolveTangent(slots *slotArena, split splitTable, base uint32, tangent math.Vec3, sign float32) uint32 {
	if slots.untouched(base) {
		slots.setDir(base, tangent)
		slots.data[int(base)*TangentSize+3] = sign
		return base
	}

	matches := func(slot uint32) bool {
		return slots.data[int(slot)*TangentSize+3] == sign && slots.agrees(slot, tangent)
	}
	if matches(base) {
		slots.addDir(base, tangent)
		return base
	}
	if slot, ok := split.find(base, matches); ok {
		slots.addDir(slot, tangent)
		return slot
	}

	slot := slots.push(tangent.X, tangent.Y, tangent.Z, sign)
	split.add(base, slot)
	return slot
}
