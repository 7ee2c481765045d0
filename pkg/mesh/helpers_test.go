package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshforge/pkg/math"
)

const epsilon = 1e-5

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) <= epsilon
}

func approxVec3(a, b math.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// unitQuad is a 1x1 square in the XY plane made of two counter-clockwise
// triangles, with texture coordinates matching the XY corners.
func unitQuad() *Mesh {
	m := New()
	m.Positions = []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
	}
	m.TexCoords = []float32{
		0, 0,
		1, 0,
		1, 1,
		0, 1,
	}
	m.Fragments = []Fragment{{
		Material:        "quad",
		PositionIndices: []uint32{0, 1, 2, 0, 2, 3},
		TexCoordIndices: []uint32{0, 1, 2, 0, 2, 3},
	}}
	return m
}

// foldedPair returns two triangles sharing the edge from position 0 to
// position 1 along X. The first lies in the XY plane with normal +Z; the
// second is tilted so its normal is angle degrees away from +Z.
func foldedPair(angle float64) Attributes {
	rad := angle * gomath.Pi / 180
	c := float32(gomath.Cos(rad))
	s := float32(gomath.Sin(rad))
	return Attributes{
		PositionSize: 3,
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0.5, -c, s,
		},
	}
}

func foldedFragments() []Fragment {
	return []Fragment{{PositionIndices: []uint32{0, 1, 2, 1, 0, 3}}}
}

func checkUnitNormals(t *testing.T, a Attributes, frags []Fragment) {
	t.Helper()
	for f := range frags {
		for _, n := range frags[f].NormalIndices {
			v := math.Vec3From(a.Normals, int(n)*NormalSize)
			if !approx(v.Length(), 1) {
				t.Errorf("fragment %d normal %d = %v, length %v", f, n, v, v.Length())
			}
		}
	}
}

func checkHandedness(t *testing.T, tangents []float32) {
	t.Helper()
	for i := 3; i < len(tangents); i += TangentSize {
		if w := tangents[i]; w != 1 && w != -1 {
			t.Errorf("tangent %d handedness = %v, want +1 or -1", i/TangentSize, w)
		}
	}
}
