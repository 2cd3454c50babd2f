// Copyright © 2026 The Vize authors

package diagnostic

import "sort"

// LineIndex converts byte offsets into 1-based line and column numbers.
// Columns count bytes from the start of the line, matching how Span
// columns index into the source when underlining.
type LineIndex struct {
	// starts[i] is the byte offset of the first byte of line i+1.
	starts []int
	size   int
}

// NewLineIndex builds an index over src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// Position returns the 1-based line and column of the byte at offset.
// Offsets outside the source clamp to its boundaries.
func (ix *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.size {
		offset = ix.size
	}
	// First line starting after offset; the line containing it is one back.
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset })
	line = i
	col = offset - ix.starts[i-1] + 1
	return line, col
}

// LineCount returns the number of lines in the indexed source. An empty
// source has one (empty) line.
func (ix *LineIndex) LineCount() int {
	return len(ix.starts)
}

// Offset returns the byte offset of the given 1-based line and column.
// It is the inverse of Position. Out-of-range lines and columns clamp to
// the source boundaries.
func (ix *LineIndex) Offset(line, col int) int {
	if line < 1 {
		line = 1
	}
	if line > len(ix.starts) {
		line = len(ix.starts)
	}
	if col < 1 {
		col = 1
	}
	offset := ix.starts[line-1] + col - 1
	if offset > ix.size {
		offset = ix.size
	}
	return offset
}

// LineAt returns the 1-based line containing offset.
func (ix *LineIndex) LineAt(offset int) int {
	line, _ := ix.Position(offset)
	return line
}
