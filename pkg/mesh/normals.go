package mesh

import "github.com/Faultbox/meshforge/pkg/math"

// ComputeNormals generates per-vertex normals for a mesh that has none.
//
// Every position starts with one zeroed normal slot. Each triangle's
// unnormalized face normal is summed into the slot of each of its corners as
// long as the slot's current direction is within 60 degrees of the face;
// otherwise the corner moves to (or creates) an alternate slot for that
// position, which keeps hard edges sharp. All slots are normalized once at the
// end. Meshes that already have normals are returned unchanged.
func ComputeNormals(a Attributes, frags []Fragment) (Attributes, []Fragment) {
	if len(a.Normals) > 0 {
		return a, frags
	}

	stride := a.PositionStride()
	slots := newSlotArena(NormalSize, a.PositionCount())
	split := make(splitTable)

	out := cloneFragments(frags)
	for f := range out {
		pIdx := out[f].PositionIndices
		nIdx := make([]uint32, 0, len(pIdx))

		for i := 0; i+2 < len(pIdx); i += 3 {
			p0 := math.Vec3From(a.Positions, int(pIdx[i])*stride)
			p1 := math.Vec3From(a.Positions, int(pIdx[i+1])*stride)
			p2 := math.Vec3From(a.Positions, int(pIdx[i+2])*stride)

			face := p1.Sub(p0).Cross(p2.Sub(p0))
			unit := face.Normalize()

			for j := 0; j < 3; j++ {
				nIdx = append(nIdx, resolveNormal(slots, split, pIdx[i+j], face, unit))
			}
		}
		out[f].NormalIndices = nIdx
	}

	slots.normalizeDirs()
	a.Normals = slots.data
	return a, out
}

// resolveNormal accumulates face into the slot chosen for position base and
// returns that slot.
func resolveNormal(slots *slotArena, split splitTable, base uint32, face, unit math.Vec3) uint32 {
	if slots.untouched(base) {
		slots.setDir(base, face)
		return base
	}
	if slots.agrees(base, unit) {
		slots.addDir(base, face)
		return base
	}

	matches := func(slot uint32) bool { return slots.agrees(slot, unit) }
	if slot, ok := split.find(base, matches); ok {
		slots.addDir(slot, face)
		return slot
	}

	slot := slots.push(face.X, face.Y, face.Z)
	split.add(base, slot)
	return slot
}
