package mesh

// CountFragments returns len(frags) when group is negative, otherwise the
// number of fragments tagged with group.
func CountFragments(frags []Fragment, group int) int {
	if group < 0 {
		return len(frags)
	}

	count := 0
	for i := range frags {
		if frags[i].Group == group {
			count++
		}
	}
	return count
}

// CountFragments returns the fragment count, filtered by grouping tag unless
// group is AllGroups.
func (m *Mesh) CountFragments(group int) int {
	return CountFragments(m.Fragments, group)
}

// Range is the slice of a Batch index buffer drawn with one material.
type Range struct {
	Material   string
	Group      int
	StartIndex int
	IndexCount int
}

// Batch is compiled mesh data flattened for upload: the shared vertex buffer
// and a single index buffer split into per-fragment ranges.
type Batch struct {
	Vertices    []float32
	Layout      Layout
	VertexCount int
	Indices     []uint32
	Ranges      []Range
	Bounds      Bounds
}

// Extract concatenates the welded index lists of every fragment that matches
// group (or of all fragments for AllGroups). Fragments with no indices are
// skipped. Extract must be called after Compile.
func (m *Mesh) Extract(group int) *Batch {
	batch := &Batch{
		Vertices:    m.Vertices,
		Layout:      m.Layout,
		VertexCount: m.VertexCount(),
	}
	batch.Bounds, _ = m.BoundingBox()

	for i := range m.Fragments {
		frag := &m.Fragments[i]
		if group >= 0 && frag.Group != group {
			continue
		}
		if len(frag.Indices) == 0 {
			continue
		}
		batch.Ranges = append(batch.Ranges, Range{
			Material:   frag.Material,
			Group:      frag.Group,
			StartIndex: len(batch.Indices),
			IndexCount: len(frag.Indices),
		})
		batch.Indices = append(batch.Indices, frag.Indices...)
	}
	return batch
}
