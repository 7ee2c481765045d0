package mesh

import (
	gomath "math"

	"github.com/Faultbox/meshforge/pkg/math"
)

// smoothingCos is the cosine of the largest angle (60 degrees) at which two
// face directions still share a slot. The angle is slightly under pi/3, so
// faces exactly 60 degrees apart are split.
var smoothingCos = float32(gomath.Cos(gomath.Pi * 0.333333))

// slotArena is a flat buffer of fixed-width accumulation slots. The first
// three components of a slot hold a direction.
type slotArena struct {
	data  []float32
	width int
}

func newSlotArena(width, count int) *slotArena {
	return &slotArena{data: make([]float32, width*count), width: width}
}

func (a *slotArena) dir(slot uint32) math.Vec3 {
	return math.Vec3From(a.data, int(slot)*a.width)
}

func (a *slotArena) setDir(slot uint32, v math.Vec3) {
	v.Store(a.data, int(slot)*a.width)
}

func (a *slotArena) addDir(slot uint32, v math.Vec3) {
	a.setDir(slot, a.dir(slot).Add(v))
}

// untouched reports whether nothing has been stored in the slot's direction.
func (a *slotArena) untouched(slot uint32) bool {
	return a.dir(slot).IsZero()
}

// push appends a slot and returns its index.
func (a *slotArena) push(values ...float32) uint32 {
	slot := uint32(len(a.data) / a.width)
	a.data = append(a.data, values...)
	return slot
}

// agrees reports whether the slot's direction is within the smoothing angle
// of unit.
func (a *slotArena) agrees(slot uint32, unit math.Vec3) bool {
	return a.dir(slot).Normalize().Dot(unit) >= smoothingCos
}

// normalizeDirs renormalizes the direction of every slot, leaving any
// trailing components alone.
func (a *slotArena) normalizeDirs() {
	for slot := 0; slot < len(a.data)/a.width; slot++ {
		a.setDir(uint32(slot), a.dir(uint32(slot)).Normalize())
	}
}

// splitTable maps a base index to the alternate slots created for it when
// faces sharing the index disagreed.
type splitTable map[uint32][]uint32

// find returns the first variant of base accepted by match.
func (t splitTable) find(base uint32, match func(slot uint32) bool) (uint32, bool) {
	for _, slot := range t[base] {
		if match(slot) {
			return slot, true
		}
	}
	return 0, false
}

func (t splitTable) add(base, slot uint32) {
	t[base] = append(t[base], slot)
}
