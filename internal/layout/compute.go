package layout

// Sequential packs members tightly in the given order: every member starts
// where the previous one ended. It returns the member offsets and the total size.
func Sequential(sizes []int) (offsets []int, total int) {
	if len(sizes) == 0 {
		return nil, 0
	}
	offsets = make([]int, len(sizes))
	for i, sz := range sizes {
		offsets[i] = total
		total += sz
	}
	return offsets, total
}

// Union lays out every variant independently from offset 0, as a tagged union
// holds exactly one active variant. The total is the largest variant payload.
// The tag is not part of the payload.
func Union(variants [][]int) (offsets [][]int, total int) {
	if len(variants) == 0 {
		return nil, 0
	}
	offsets = make([][]int, len(variants))
	for i, params := range variants {
		var size int
		offsets[i], size = Sequential(params)
		total = max(total, size)
	}
	return offsets, total
}

// Check validates a computed total against the target limits.
func (t Target) Check(name string, total int) error {
	if t.MaxSize > 0 && total > t.MaxSize {
		return &LayoutError{Kind: LayoutErrSizeOverflow, Name: name, Value: total}
	}
	return nil
}
