package mesh

import (
	"github.com/gogpu/gputypes"
	"github.com/x448/float16"
)

// halfSize is the size of a float16 in bytes.
const halfSize = 2

// HalfLayout is the vertex format of a HalfBuffer. GPU half formats only come
// in widths of 2 and 4, so attributes are padded: positions carry w = 1,
// normals w = 0 and three-component texture coordinates a zero fourth
// component. Offsets and Stride count float16 components.
type HalfLayout struct {
	PositionOffset int
	NormalOffset   int
	TangentOffset  int
	TexCoordOffset int
	TexCoordSize   int
	ColorOffset    int
	Stride         int
}

// HalfBuffer is a welded vertex buffer re-encoded as IEEE 754 half floats.
type HalfBuffer struct {
	Data   []uint16
	Layout HalfLayout
}

// VertexCount returns the number of vertices in the buffer.
func (h *HalfBuffer) VertexCount() int {
	if h.Layout.Stride == 0 {
		return 0
	}
	return len(h.Data) / h.Layout.Stride
}

// Float32 decodes component i.
func (h *HalfBuffer) Float32(i int) float32 {
	return float16.Frombits(h.Data[i]).Float32()
}

// ByteStride returns the vertex size in bytes.
func (l HalfLayout) ByteStride() int { return l.Stride * halfSize }

// BufferLayout describes the half layout for a GPU pipeline, using the same
// shader locations as Layout.BufferLayout.
func (l HalfLayout) BufferLayout() gputypes.VertexBufferLayout {
	texFormat := gputypes.VertexFormatFloat16x2
	if l.TexCoordSize > 2 {
		texFormat = gputypes.VertexFormatFloat16x4
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.ByteStride()),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat16x4, Offset: uint64(l.PositionOffset * halfSize), ShaderLocation: uint32(AttrPosition)},
			{Format: gputypes.VertexFormatFloat16x4, Offset: uint64(l.NormalOffset * halfSize), ShaderLocation: uint32(AttrNormal)},
			{Format: gputypes.VertexFormatFloat16x4, Offset: uint64(l.TangentOffset * halfSize), ShaderLocation: uint32(AttrTangent)},
			{Format: texFormat, Offset: uint64(l.TexCoordOffset * halfSize), ShaderLocation: uint32(AttrTexCoord)},
			{Format: gputypes.VertexFormatFloat16x4, Offset: uint64(l.ColorOffset * halfSize), ShaderLocation: uint32(AttrColor)},
		},
	}
}

// PackHalf converts a float32 buffer with layout l to half precision.
// Values outside the float16 range become infinities.
func PackHalf(vertices []float32, l Layout) *HalfBuffer {
	texSize := 2
	if l.TexCoordSize > 2 {
		texSize = 4
	}
	hl := HalfLayout{
		PositionOffset: 0,
		NormalOffset:   4,
		TangentOffset:  8,
		TexCoordOffset: 12,
		TexCoordSize:   texSize,
	}
	hl.ColorOffset = hl.TexCoordOffset + texSize
	hl.Stride = hl.ColorOffset + ColorSize

	count := l.VertexCount(len(vertices))
	data := make([]uint16, count*hl.Stride)

	for v := 0; v < count; v++ {
		src := vertices[v*l.Stride : (v+1)*l.Stride]
		dst := data[v*hl.Stride : (v+1)*hl.Stride]

		packPadded(dst[hl.PositionOffset:hl.PositionOffset+4], src[l.PositionOffset:l.PositionOffset+l.PositionSize], 1)
		packPadded(dst[hl.NormalOffset:hl.NormalOffset+4], src[l.NormalOffset:l.NormalOffset+NormalSize], 0)
		packPadded(dst[hl.TangentOffset:hl.TangentOffset+4], src[l.TangentOffset:l.TangentOffset+TangentSize], 0)
		packPadded(dst[hl.TexCoordOffset:hl.TexCoordOffset+texSize], src[l.TexCoordOffset:l.TexCoordOffset+l.TexCoordSize], 0)
		packPadded(dst[hl.ColorOffset:hl.ColorOffset+ColorSize], src[l.ColorOffset:l.ColorOffset+ColorSize], 0)
	}

	return &HalfBuffer{Data: data, Layout: hl}
}

// packPadded encodes src into dst, filling any remaining components of dst
// with zeros except the last, which gets pad.
func packPadded(dst []uint16, src []float32, pad float32) {
	for i := range dst {
		var v float32
		switch {
		case i < len(src):
			v = src[i]
		case i == len(dst)-1:
			v = pad
		}
		dst[i] = float16.Fromfloat32(v).Bits()
	}
}
