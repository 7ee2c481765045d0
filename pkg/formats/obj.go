// Wavefront OBJ parser producing raw mesh attribute streams.

package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshforge/pkg/mesh"
)

// OBJ format errors.
var (
	ErrEmptyOBJ               = errors.New("OBJ contains no faces")
	ErrOBJIndexOutOfRange     = errors.New("OBJ index out of range")
	ErrInconsistentFaceFormat = errors.New("inconsistent OBJ face format")
)

// DefaultMaterial names the fragment that collects faces appearing before any
// usemtl statement.
const DefaultMaterial = "default"

// OBJOptions controls OBJ parsing.
type OBJOptions struct {
	// ReverseWinding emits every triangle in reverse corner order.
	ReverseWinding bool
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Positions    []float32
	PositionSize int // 3, or 4 if any vertex carried w
	Normals      []float32
	TexCoords    []float32
	TexCoordSize int // 2, or 3 if any texcoord carried a third component
	Fragments    []mesh.Fragment

	// Warnings counts lines that were malformed and replaced by defaults.
	Warnings int
}

// faceFormat records which attribute indices a face vertex carries.
type faceFormat struct {
	texCoord bool
	normal   bool
}

func (f faceFormat) String() string {
	switch {
	case f.texCoord && f.normal:
		return "v/t/n"
	case f.texCoord:
		return "v/t"
	case f.normal:
		return "v//n"
	default:
		return "v"
	}
}

// faceVertex holds the resolved zero-based indices of one face corner.
type faceVertex struct {
	position, texCoord, normal int
}

// objFragment is a fragment under construction.
type objFragment struct {
	frag   mesh.Fragment
	format faceFormat
	faces  int
}

// objParser holds parse state. Positions are kept with four components and
// texture coordinates with three until the end of the file.
type objParser struct {
	opts OBJOptions

	positions []float32
	normals   []float32
	texCoords []float32
	hasW      bool
	hasR      bool
	warnings  int

	fragments []*objFragment
	byName    map[string]int
	current   int
}

// ParseOBJ parses OBJ data.
func ParseOBJ(data []byte, opts OBJOptions) (*OBJ, error) {
	p := &objParser{
		opts:    opts,
		byName:  make(map[string]int),
		current: -1,
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return p.finish()
}

// LoadOBJ reads and parses an OBJ file.
func LoadOBJ(path string, opts OBJOptions) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data, opts)
}

func (p *objParser) parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	args := fields[1:]
	switch fields[0] {
	case "v":
		p.parsePosition(args)
	case "vn":
		p.parseNormal(args)
	case "vt":
		p.parseTexCoord(args)
	case "usemtl":
		name := DefaultMaterial
		if len(args) > 0 {
			name = args[0]
		} else {
			p.warnings++
		}
		p.useMaterial(name)
	case "f":
		return p.parseFace(args)
	}
	return nil
}

// parseFloats parses up to len(dst) leading values and returns how many
// succeeded.
func parseFloats(dst []float32, args []string) int {
	n := 0
	for n < len(dst) && n < len(args) {
		v, err := strconv.ParseFloat(args[n], 32)
		if err != nil {
			break
		}
		dst[n] = float32(v)
		n++
	}
	return n
}

func (p *objParser) parsePosition(args []string) {
	val := [4]float32{0, 0, 0, 1}
	switch n := parseFloats(val[:], args); {
	case n == 4:
		p.hasW = true
	case n < 3:
		val = [4]float32{0, 0, 0, 1}
		p.warnings++
	}
	p.positions = append(p.positions, val[:]...)
}

func (p *objParser) parseNormal(args []string) {
	var val [3]float32
	if parseFloats(val[:], args) < 3 {
		val = [3]float32{0, 0, 1}
		p.warnings++
	}
	p.normals = append(p.normals, val[:]...)
}

func (p *objParser) parseTexCoord(args []string) {
	var val [3]float32
	switch n := parseFloats(val[:], args); {
	case n == 3:
		p.hasR = true
	case n < 2:
		val = [3]float32{}
		p.warnings++
	}
	p.texCoords = append(p.texCoords, val[:]...)
}

// useMaterial makes the fragment for name current, creating it on first use.
func (p *objParser) useMaterial(name string) {
	if i, ok := p.byName[name]; ok {
		p.current = i
		return
	}
	p.fragments = append(p.fragments, &objFragment{frag: mesh.Fragment{Material: name}})
	p.current = len(p.fragments) - 1
	p.byName[name] = p.current
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		p.warnings++
		return nil
	}
	if p.current < 0 {
		p.useMaterial(DefaultMaterial)
	}
	frag := p.fragments[p.current]

	corners := make([]faceVertex, len(args))
	var format faceFormat
	for i, arg := range args {
		v, f, err := p.parseFaceVertex(arg)
		if err != nil {
			return err
		}
		if i == 0 {
			format = f
		} else if f != format {
			return fmt.Errorf("%w: %q in a %s face", ErrInconsistentFaceFormat, arg, format)
		}
		corners[i] = v
	}

	if frag.faces > 0 && format != frag.format {
		return fmt.Errorf("%w: %s face in %s fragment %q", ErrInconsistentFaceFormat, format, frag.format, frag.frag.Material)
	}
	frag.format = format
	frag.faces++

	for i := 1; i+1 < len(corners); i++ {
		tri := [3]faceVertex{corners[0], corners[i], corners[i+1]}
		if p.opts.ReverseWinding {
			tri[0], tri[2] = tri[2], tri[0]
		}
		for _, c := range tri {
			frag.add(c, format)
		}
	}
	return nil
}

func (f *objFragment) add(c faceVertex, format faceFormat) {
	f.frag.PositionIndices = append(f.frag.PositionIndices, uint32(c.position))
	if format.texCoord {
		f.frag.TexCoordIndices = append(f.frag.TexCoordIndices, uint32(c.texCoord))
	}
	if format.normal {
		f.frag.NormalIndices = append(f.frag.NormalIndices, uint32(c.normal))
	}
}

// parseFaceVertex parses one of v, v/t, v//n or v/t/n.
func (p *objParser) parseFaceVertex(arg string) (faceVertex, faceFormat, error) {
	parts := strings.Split(arg, "/")
	if len(parts) > 3 {
		return faceVertex{}, faceFormat{}, fmt.Errorf("%w: %q", ErrInconsistentFaceFormat, arg)
	}

	var v faceVertex
	var format faceFormat
	var err error

	if v.position, err = resolveIndex(parts[0], len(p.positions)/4); err != nil {
		return v, format, err
	}
	if len(parts) > 1 && parts[1] != "" {
		format.texCoord = true
		if v.texCoord, err = resolveIndex(parts[1], len(p.texCoords)/3); err != nil {
			return v, format, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		format.normal = true
		if v.normal, err = resolveIndex(parts[2], len(p.normals)/3); err != nil {
			return v, format, err
		}
	}
	return v, format, nil
}

// resolveIndex converts a one-based or negative relative OBJ index into a
// zero-based one. count is the number of elements defined so far.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInconsistentFaceFormat, s)
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 {
		return 0, fmt.Errorf("%w: %d", ErrOBJIndexOutOfRange, n)
	}
	return idx, nil
}

// finish validates indices and compacts the attribute streams.
func (p *objParser) finish() (*OBJ, error) {
	obj := &OBJ{
		Positions:    p.positions,
		PositionSize: 4,
		Normals:      p.normals,
		TexCoords:    p.texCoords,
		TexCoordSize: 3,
		Warnings:     p.warnings,
	}

	usesTexCoords, allTexCoords := false, true
	usesNormals, allNormals := false, true
	for _, f := range p.fragments {
		if f.faces == 0 {
			continue
		}
		obj.Fragments = append(obj.Fragments, f.frag)
		usesTexCoords = usesTexCoords || f.format.texCoord
		allTexCoords = allTexCoords && f.format.texCoord
		usesNormals = usesNormals || f.format.normal
		allNormals = allNormals && f.format.normal
	}
	if len(obj.Fragments) == 0 {
		return nil, ErrEmptyOBJ
	}

	// A stream used by only some fragments cannot be welded, so drop it and
	// let compilation regenerate it.
	if usesNormals && !allNormals {
		obj.Warnings++
		usesNormals = false
	}
	if usesTexCoords && !allTexCoords {
		obj.Warnings++
		usesTexCoords = false
	}
	if !usesNormals {
		obj.Normals = nil
	}
	if !usesTexCoords {
		obj.TexCoords = nil
	}
	for i := range obj.Fragments {
		f := &obj.Fragments[i]
		if !usesNormals {
			f.NormalIndices = nil
		}
		if !usesTexCoords {
			f.TexCoordIndices = nil
		}
		if err := checkRange(f.PositionIndices, len(obj.Positions)/4, "position"); err != nil {
			return nil, fmt.Errorf("fragment %q: %w", f.Material, err)
		}
		if err := checkRange(f.NormalIndices, len(obj.Normals)/3, "normal"); err != nil {
			return nil, fmt.Errorf("fragment %q: %w", f.Material, err)
		}
		if err := checkRange(f.TexCoordIndices, len(obj.TexCoords)/3, "texcoord"); err != nil {
			return nil, fmt.Errorf("fragment %q: %w", f.Material, err)
		}
	}

	if !p.hasW {
		obj.Positions = compact(obj.Positions, 4, 3)
		obj.PositionSize = 3
	}
	if !p.hasR {
		obj.TexCoords = compact(obj.TexCoords, 3, 2)
		obj.TexCoordSize = 2
		for i := 1; i < len(obj.TexCoords); i += 2 {
			obj.TexCoords[i] = 1 - obj.TexCoords[i]
		}
	}
	return obj, nil
}

func checkRange(indices []uint32, count int, what string) error {
	for _, idx := range indices {
		if int(idx) >= count {
			return fmt.Errorf("%w: %s %d of %d", ErrOBJIndexOutOfRange, what, idx+1, count)
		}
	}
	return nil
}

// compact keeps the first keep components of every from-wide element, in
// place.
func compact(data []float32, from, keep int) []float32 {
	n := len(data) / from
	for i := 0; i < n; i++ {
		copy(data[i*keep:i*keep+keep], data[i*from:i*from+keep])
	}
	return data[:n*keep]
}

// VertexCount returns the number of positions.
func (o *OBJ) VertexCount() int { return len(o.Positions) / o.PositionSize }

// TriangleCount returns the number of triangles across all fragments.
func (o *OBJ) TriangleCount() int {
	total := 0
	for i := range o.Fragments {
		total += o.Fragments[i].TriangleCount()
	}
	return total
}

// Mesh returns a mesh ready for compilation. The mesh shares no slices with
// the OBJ.
func (o *OBJ) Mesh() *mesh.Mesh {
	m := mesh.New()
	m.Positions = append([]float32(nil), o.Positions...)
	m.PositionSize = o.PositionSize
	m.Normals = append([]float32(nil), o.Normals...)
	m.TexCoords = append([]float32(nil), o.TexCoords...)
	m.TexCoordSize = o.TexCoordSize

	m.Fragments = make([]mesh.Fragment, len(o.Fragments))
	for i, f := range o.Fragments {
		m.Fragments[i] = mesh.Fragment{
			Material:        f.Material,
			Group:           f.Group,
			PositionIndices: append([]uint32(nil), f.PositionIndices...),
			NormalIndices:   append([]uint32(nil), f.NormalIndices...),
			TexCoordIndices: append([]uint32(nil), f.TexCoordIndices...),
		}
	}
	return m
}
