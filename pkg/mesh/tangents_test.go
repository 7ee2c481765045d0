package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshforge/pkg/math"
)

func TestComputeTangentsQuad(t *testing.T) {
	m := unitQuad()

	a, frags := ComputeTangents(m.Attributes, m.Fragments)

	if got := a.TangentCount(); got != 4 {
		t.Fatalf("TangentCount() = %d, want 4", got)
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if !equalIndices(frags[0].TangentIndices, want) {
		t.Errorf("TangentIndices = %v, want %v", frags[0].TangentIndices, want)
	}
	for slot := 0; slot < 4; slot++ {
		base := slot * TangentSize
		if got := math.Vec3From(a.Tangents, base); !approxVec3(got, math.Vec3{X: 1}) {
			t.Errorf("tangent %d = %v, want (1,0,0)", slot, got)
		}
		if w := a.Tangents[base+3]; w != 1 {
			t.Errorf("tangent %d handedness = %v, want 1", slot, w)
		}
	}
	if m.Fragments[0].TangentIndices != nil {
		t.Error("input fragment was modified")
	}
}

// mirrored returns two triangles sharing texture coordinates across a mirror
// seam: the second triangle's UVs wind the opposite way.
func mirrored() Attributes {
	return Attributes{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			-1, 0, 0,
		},
		TexCoords: []float32{
			0, 0,
			1, 0,
			0, 1,
		},
	}
}

func TestComputeTangentsMirrorSeam(t *testing.T) {
	frags := []Fragment{{
		PositionIndices: []uint32{0, 1, 2, 0, 2, 3},
		TexCoordIndices: []uint32{0, 1, 2, 0, 2, 1},
	}}

	a, out := ComputeTangents(mirrored(), frags)

	want := []uint32{0, 1, 2, 3, 4, 5}
	if !equalIndices(out[0].TangentIndices, want) {
		t.Fatalf("TangentIndices = %v, want %v", out[0].TangentIndices, want)
	}
	if got := a.TangentCount(); got != 6 {
		t.Errorf("TangentCount() = %d, want 6", got)
	}

	tests := []struct {
		slot int
		dir  math.Vec3
		sign float32
	}{
		{0, math.Vec3{X: 1}, 1},
		{1, math.Vec3{X: 1}, 1},
		{2, math.Vec3{X: 1}, 1},
		{3, math.Vec3{X: -1}, -1},
		{4, math.Vec3{X: -1}, -1},
		{5, math.Vec3{X: -1}, -1},
	}
	for _, tt := range tests {
		base := tt.slot * TangentSize
		if got := math.Vec3From(a.Tangents, base); !approxVec3(got, tt.dir) {
			t.Errorf("tangent %d = %v, want %v", tt.slot, got, tt.dir)
		}
		if w := a.Tangents[base+3]; w != tt.sign {
			t.Errorf("tangent %d handedness = %v, want %v", tt.slot, w, tt.sign)
		}
	}
	checkHandedness(t, a.Tangents)
}

func TestComputeTangentsSplitTablePerFragment(t *testing.T) {
	frags := []Fragment{
		{
			PositionIndices: []uint32{0, 1, 2, 0, 2, 3},
			TexCoordIndices: []uint32{0, 1, 2, 0, 2, 1},
		},
		{
			PositionIndices: []uint32{0, 2, 3},
			TexCoordIndices: []uint32{0, 2, 1},
		},
	}

	a, out := ComputeTangents(mirrored(), frags)

	// The mirrored triangle in the second fragment cannot see the split
	// slots created in the first, so it gets its own.
	want := []uint32{6, 7, 8}
	if !equalIndices(out[1].TangentIndices, want) {
		t.Errorf("fragment 1 TangentIndices = %v, want %v", out[1].TangentIndices, want)
	}
	if got := a.TangentCount(); got != 9 {
		t.Errorf("TangentCount() = %d, want 9", got)
	}
	checkHandedness(t, a.Tangents)
}

func TestComputeTangentsWithoutTexCoords(t *testing.T) {
	m := unitQuad()
	m.TexCoords = nil
	m.Fragments[0].TexCoordIndices = nil

	a, frags := ComputeTangents(m.Attributes, m.Fragments)

	want := []float32{1, 0, 0, 1}
	if len(a.Tangents) != len(want) {
		t.Fatalf("Tangents = %v, want %v", a.Tangents, want)
	}
	for i := range want {
		if a.Tangents[i] != want[i] {
			t.Errorf("Tangents[%d] = %v, want %v", i, a.Tangents[i], want[i])
		}
	}
	if !equalIndices(frags[0].TangentIndices, []uint32{0, 0, 0, 0, 0, 0}) {
		t.Errorf("TangentIndices = %v, want all zero", frags[0].TangentIndices)
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	m := unitQuad()
	m.TexCoords = []float32{0.5, 0.5}
	m.Fragments[0].TexCoordIndices = []uint32{0, 0, 0, 0, 0, 0}

	a, frags := ComputeTangents(m.Attributes, m.Fragments)

	if len(frags[0].TangentIndices) != 6 {
		t.Fatalf("got %d tangent indices, want 6", len(frags[0].TangentIndices))
	}
	for i, v := range a.Tangents {
		if gomath.IsNaN(float64(v)) {
			t.Fatalf("Tangents[%d] is NaN", i)
		}
	}
	checkHandedness(t, a.Tangents)
}

func TestComputeTangentsTexCoordStride(t *testing.T) {
	m := unitQuad()
	m.TexCoordSize = 3
	m.TexCoords = []float32{
		0, 0, 9,
		1, 0, 9,
		1, 1, 9,
		0, 1, 9,
	}

	a, _ := ComputeTangents(m.Attributes, m.Fragments)

	if got := a.TangentCount(); got != 4 {
		t.Fatalf("TangentCount() = %d, want 4", got)
	}
	if got := math.Vec3From(a.Tangents, 0); !approxVec3(got, math.Vec3{X: 1}) {
		t.Errorf("tangent 0 = %v, want (1,0,0)", got)
	}
}

func TestComputeTangentsKeepsExisting(t *testing.T) {
	m := unitQuad()
	m.Tangents = []float32{0, 1, 0, -1}
	m.Fragments[0].TangentIndices = []uint32{0, 0, 0, 0, 0, 0}

	a, _ := ComputeTangents(m.Attributes, m.Fragments)

	if len(a.Tangents) != 4 || a.Tangents[3] != -1 {
		t.Errorf("authored tangents replaced: %v", a.Tangents)
	}
}

func TestHandedness(t *testing.T) {
	negZero := float32(gomath.Copysign(0, -1))

	tests := []struct {
		name string
		det  float32
		want float32
	}{
		{"positive", 0.25, 1},
		{"negative", -3, -1},
		{"zero", 0, 1},
		{"negative zero", negZero, -1},
		{"positive infinity", float32(gomath.Inf(1)), 1},
		{"negative infinity", float32(gomath.Inf(-1)), -1},
		{"nan", float32(gomath.NaN()), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handedness(tt.det); got != tt.want {
				t.Errorf("handedness(%v) = %v, want %v", tt.det, got, tt.want)
			}
		})
	}
}
