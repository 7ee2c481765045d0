package mesh

import "github.com/Faultbox/meshforge/pkg/math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() math.Vec3 { return b.Max.Sub(b.Min) }

// HalfExtents returns half the box size along each axis.
func (b Bounds) HalfExtents() math.Vec3 { return b.Size().Scale(0.5) }

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 { return b.Min.Add(b.HalfExtents()) }

// ComputeBounds scans every position. It returns false when there are no
// positions.
func ComputeBounds(a Attributes) (Bounds, bool) {
	stride := a.PositionStride()
	if len(a.Positions) < stride {
		return Bounds{}, false
	}

	first := math.Vec3From(a.Positions, 0)
	b := Bounds{Min: first, Max: first}
	for p := stride; p+stride <= len(a.Positions); p += stride {
		pos := math.Vec3From(a.Positions, p)
		b.Min = b.Min.Min(pos)
		b.Max = b.Max.Max(pos)
	}
	return b, true
}

// RescalePositions moves center to the origin and scales every position by
// radius / max(r.X, r.Y, r.Z), in place. Components past the third are left
// alone.
func RescalePositions(positions []float32, stride int, radius float32, r, center math.Vec3) {
	if len(positions) == 0 {
		return
	}

	scale := radius / r.MaxComponent()
	for p := 0; p+stride <= len(positions); p += stride {
		math.Vec3From(positions, p).Sub(center).Scale(scale).Store(positions, p)
	}
}

// BoundingBox returns the bounds of the mesh positions, or false if the mesh
// has none.
func (m *Mesh) BoundingBox() (Bounds, bool) {
	return ComputeBounds(m.Attributes)
}

// Rescale recenters and uniformly scales the positions in place.
// See RescalePositions.
func (m *Mesh) Rescale(radius float32, r, center math.Vec3) {
	RescalePositions(m.Positions, m.PositionStride(), radius, r, center)
}

// FitToRadius centers the mesh on its bounding box and scales it so the
// largest half extent equals radius. A radius <= 0 or a flat-point box leaves
// the positions untouched. The returned bounds reflect the final positions.
func (m *Mesh) FitToRadius(radius float32) (Bounds, bool) {
	b, ok := m.BoundingBox()
	if !ok {
		return b, false
	}

	r := b.HalfExtents()
	if radius <= 0 || r.MaxComponent() <= 0 {
		return b, true
	}

	m.Rescale(radius, r, b.Center())
	return m.BoundingBox()
}
