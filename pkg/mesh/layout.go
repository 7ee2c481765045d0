package mesh

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Attribute identifies one interleaved vertex attribute.
type Attribute int

// Interleaved attributes in buffer order. The value is also the shader
// location used by BufferLayout.
const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrTangent
	AttrTexCoord
	AttrColor
)

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrTangent:
		return "tangent"
	case AttrTexCoord:
		return "texcoord"
	case AttrColor:
		return "color"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// floatSize is the size of a float32 in bytes.
const floatSize = 4

// Layout describes the interleaved vertex format produced by Weld.
// Offsets and Stride count float32 components, not bytes.
type Layout struct {
	PositionOffset int
	PositionSize   int
	NormalOffset   int
	TangentOffset  int
	TexCoordOffset int
	TexCoordSize   int
	ColorOffset    int
	Stride         int
}

// NewLayout returns the layout for the given position and texture coordinate
// widths: position, normal, tangent+sign, texcoord, color.
func NewLayout(positionSize, texCoordSize int) Layout {
	l := Layout{
		PositionOffset: 0,
		PositionSize:   positionSize,
	}
	l.Stride = positionSize

	l.NormalOffset = l.Stride
	l.Stride += NormalSize

	l.TangentOffset = l.Stride
	l.Stride += TangentSize

	l.TexCoordOffset = l.Stride
	l.TexCoordSize = texCoordSize
	l.Stride += texCoordSize

	l.ColorOffset = l.Stride
	l.Stride += ColorSize

	return l
}

// Offset returns the float offset of attr within a vertex.
func (l Layout) Offset(attr Attribute) int {
	switch attr {
	case AttrPosition:
		return l.PositionOffset
	case AttrNormal:
		return l.NormalOffset
	case AttrTangent:
		return l.TangentOffset
	case AttrTexCoord:
		return l.TexCoordOffset
	case AttrColor:
		return l.ColorOffset
	default:
		return -1
	}
}

// Size returns the number of components of attr.
func (l Layout) Size(attr Attribute) int {
	switch attr {
	case AttrPosition:
		return l.PositionSize
	case AttrNormal:
		return NormalSize
	case AttrTangent:
		return TangentSize
	case AttrTexCoord:
		return l.TexCoordSize
	case AttrColor:
		return ColorSize
	default:
		return 0
	}
}

// ByteOffset returns the byte offset of attr within a vertex.
func (l Layout) ByteOffset(attr Attribute) int { return l.Offset(attr) * floatSize }

// ByteStride returns the vertex size in bytes.
func (l Layout) ByteStride() int { return l.Stride * floatSize }

// VertexCount returns how many vertices fit in a buffer of n floats.
func (l Layout) VertexCount(n int) int {
	if l.Stride == 0 {
		return 0
	}
	return n / l.Stride
}

// BufferLayout describes the layout for a GPU pipeline. Shader locations
// follow the Attribute values.
func (l Layout) BufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 0, 5)
	for attr := AttrPosition; attr <= AttrColor; attr++ {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         float32Format(l.Size(attr)),
			Offset:         uint64(l.ByteOffset(attr)),
			ShaderLocation: uint32(attr),
		})
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.ByteStride()),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func float32Format(components int) gputypes.VertexFormat {
	switch components {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}
