// Package meshfile stores compiled meshes on disk.
//
// A file is a single CBOR record holding the welded vertex buffer (optionally
// compressed) with a BLAKE3 checksum, its layout, the per-fragment index
// lists and the bounds of the source positions. Raw attribute streams are not stored: a decoded mesh
// can be extracted and drawn but not recompiled.
package meshfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/fxamacker/cbor/v2"

	"github.com/Faultbox/meshforge/pkg/math"
	"github.com/Faultbox/meshforge/pkg/mesh"
)

// Magic identifies a compiled mesh record.
const Magic = "MFMESH"

// Version is the record version written by Encode.
const Version = 2

// Container errors.
var (
	ErrInvalidMagic       = errors.New("invalid mesh file magic")
	ErrUnsupportedVersion = errors.New("unsupported mesh file version")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrNotCompiled        = errors.New("mesh is not compiled")
	ErrCorrupt            = errors.New("corrupt mesh file")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("meshfile: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("meshfile: CBOR decoder initialization failed: " + err.Error())
	}
}

// Header summarizes a record without its payload.
type Header struct {
	Version        int
	Source         Hash
	Layout         mesh.Layout
	VertexCount    int
	Compression    Compression
	RawSize        int // uncompressed payload bytes
	CompressedSize int
	Fragments      int
	Indices        int
	Bounds         mesh.Bounds
}

type record struct {
	Magic        string           `cbor:"1,keyasint"`
	Version      int              `cbor:"2,keyasint"`
	Source       []byte           `cbor:"3,keyasint"`
	PositionSize int              `cbor:"4,keyasint"`
	TexCoordSize int              `cbor:"5,keyasint"`
	Stride       int              `cbor:"6,keyasint"`
	VertexCount  int              `cbor:"7,keyasint"`
	Compression  uint8            `cbor:"8,keyasint"`
	RawSize      int              `cbor:"9,keyasint"`
	Payload      []byte           `cbor:"10,keyasint"`
	Fragments    []fragmentRecord `cbor:"11,keyasint"`
	Bounds       [6]float32       `cbor:"12,keyasint"`
	Checksum     []byte           `cbor:"13,keyasint"` // BLAKE3 of the uncompressed payload
}

type fragmentRecord struct {
	Material string   `cbor:"1,keyasint"`
	Group    int      `cbor:"2,keyasint"`
	Indices  []uint32 `cbor:"3,keyasint"`
}

// Encode writes the compiled mesh m to w with bounds computed from its
// positions. source is recorded so caches can check what the mesh was built
// from. If compression does not shrink the payload it is stored
// uncompressed.
func Encode(w io.Writer, m *mesh.Mesh, source Hash, tag Compression) (Header, error) {
	bounds, _ := m.BoundingBox()
	return EncodeWithBounds(w, m, source, tag, bounds)
}

// EncodeWithBounds is Encode with caller-supplied bounds. Use it for meshes
// returned by Decode, which carry no positions.
func EncodeWithBounds(w io.Writer, m *mesh.Mesh, source Hash, tag Compression, bounds mesh.Bounds) (Header, error) {
	if m.Layout.Stride == 0 {
		return Header{}, ErrNotCompiled
	}

	raw := floatsToBytes(m.Vertices)
	payload, used, err := compress(raw, tag)
	if err != nil {
		return Header{}, fmt.Errorf("compressing vertices: %w", err)
	}

	sum := HashBytes(raw)
	rec := record{
		Magic:        Magic,
		Version:      Version,
		Source:       source[:],
		PositionSize: m.Layout.PositionSize,
		TexCoordSize: m.Layout.TexCoordSize,
		Stride:       m.Layout.Stride,
		VertexCount:  m.VertexCount(),
		Compression:  uint8(used),
		RawSize:      len(raw),
		Payload:      payload,
		Fragments:    make([]fragmentRecord, len(m.Fragments)),
		Bounds: [6]float32{
			bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
			bounds.Max.X, bounds.Max.Y, bounds.Max.Z,
		},
		Checksum: sum[:],
	}
	for i, f := range m.Fragments {
		rec.Fragments[i] = fragmentRecord{Material: f.Material, Group: f.Group, Indices: f.Indices}
	}

	if err := encMode.NewEncoder(w).Encode(rec); err != nil {
		return Header{}, fmt.Errorf("encoding mesh record: %w", err)
	}
	return rec.header(), nil
}

// Decode reads a record written by Encode. The returned mesh has its vertex
// buffer, layout and fragment indices populated.
func Decode(r io.Reader) (*mesh.Mesh, Header, error) {
	var rec record
	if err := decMode.NewDecoder(r).Decode(&rec); err != nil {
		return nil, Header{}, fmt.Errorf("decoding mesh record: %w", err)
	}
	if err := rec.validate(); err != nil {
		return nil, Header{}, err
	}

	raw, err := decompress(rec.Payload, Compression(rec.Compression), rec.RawSize)
	if err != nil {
		return nil, Header{}, err
	}
	if sum := HashBytes(raw); !bytes.Equal(sum[:], rec.Checksum) {
		return nil, Header{}, fmt.Errorf("%w: payload checksum mismatch", ErrCorrupt)
	}

	m := mesh.New()
	m.PositionSize = rec.PositionSize
	m.TexCoordSize = rec.TexCoordSize
	m.Layout = mesh.NewLayout(rec.PositionSize, rec.TexCoordSize)
	m.Vertices = bytesToFloats(raw)
	if m.VertexCount() != rec.VertexCount || len(m.Vertices) != rec.VertexCount*m.Layout.Stride {
		return nil, Header{}, fmt.Errorf("%w: %d floats for %d vertices", ErrCorrupt, len(m.Vertices), rec.VertexCount)
	}

	m.Fragments = make([]mesh.Fragment, len(rec.Fragments))
	for i, f := range rec.Fragments {
		for _, idx := range f.Indices {
			if int(idx) >= rec.VertexCount {
				return nil, Header{}, fmt.Errorf("%w: fragment %d index %d out of %d vertices", ErrCorrupt, i, idx, rec.VertexCount)
			}
		}
		m.Fragments[i] = mesh.Fragment{Material: f.Material, Group: f.Group, Indices: f.Indices}
	}

	return m, rec.header(), nil
}

// ReadHeader decodes a record and returns only its header. The payload is
// not decompressed.
func ReadHeader(r io.Reader) (Header, error) {
	var rec record
	if err := decMode.NewDecoder(r).Decode(&rec); err != nil {
		return Header{}, fmt.Errorf("decoding mesh record: %w", err)
	}
	if err := rec.validate(); err != nil {
		return Header{}, err
	}
	return rec.header(), nil
}

func (rec *record) validate() error {
	if rec.Magic != Magic {
		return ErrInvalidMagic
	}
	if rec.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	if len(rec.Source) != len(Hash{}) {
		return fmt.Errorf("%w: source hash is %d bytes", ErrCorrupt, len(rec.Source))
	}
	if len(rec.Checksum) != len(Hash{}) {
		return fmt.Errorf("%w: checksum is %d bytes", ErrCorrupt, len(rec.Checksum))
	}
	if rec.PositionSize < 3 || rec.PositionSize > 4 || rec.TexCoordSize < 2 || rec.TexCoordSize > 3 {
		return fmt.Errorf("%w: position size %d, texcoord size %d", ErrCorrupt, rec.PositionSize, rec.TexCoordSize)
	}
	if l := mesh.NewLayout(rec.PositionSize, rec.TexCoordSize); l.Stride != rec.Stride {
		return fmt.Errorf("%w: stride %d, expected %d", ErrCorrupt, rec.Stride, l.Stride)
	}
	if rec.VertexCount < 0 || rec.RawSize != rec.VertexCount*rec.Stride*4 {
		return fmt.Errorf("%w: %d payload bytes for %d vertices", ErrCorrupt, rec.RawSize, rec.VertexCount)
	}
	return nil
}

func (rec *record) header() Header {
	h := Header{
		Version:        rec.Version,
		Layout:         mesh.NewLayout(rec.PositionSize, rec.TexCoordSize),
		VertexCount:    rec.VertexCount,
		Compression:    Compression(rec.Compression),
		RawSize:        rec.RawSize,
		CompressedSize: len(rec.Payload),
		Fragments:      len(rec.Fragments),
		Bounds: mesh.Bounds{
			Min: math.Vec3{X: rec.Bounds[0], Y: rec.Bounds[1], Z: rec.Bounds[2]},
			Max: math.Vec3{X: rec.Bounds[3], Y: rec.Bounds[4], Z: rec.Bounds[5]},
		},
	}
	copy(h.Source[:], rec.Source)
	for _, f := range rec.Fragments {
		h.Indices += len(f.Indices)
	}
	return h
}

func floatsToBytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], gomath.Float32bits(v))
	}
	return out
}

func bytesToFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
