// Copyright © 2026 The Vize authors

package lsp

import (
	"strings"

	"github.com/ushironoko/vize-sub001/diagnostic"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// offsetToPosition converts a byte offset to a 0-based LSP position.
func offsetToPosition(lines *diagnostic.LineIndex, offset int) protocol.Position {
	line, col := lines.Position(offset)
	return protocol.Position{
		Line:      safeUint(line - 1),
		Character: safeUint(col - 1),
	}
}

// positionToOffset converts a 0-based LSP position to a byte offset.
func positionToOffset(lines *diagnostic.LineIndex, pos protocol.Position) int {
	return lines.Offset(int(pos.Line)+1, int(pos.Character)+1)
}

// spanRange converts a byte offset span to an LSP range. A span whose
// end does not extend past its start yields a zero-width range.
func spanRange(lines *diagnostic.LineIndex, start, end int) protocol.Range {
	s := offsetToPosition(lines, start)
	if end <= start {
		return protocol.Range{Start: s, End: s}
	}
	return protocol.Range{Start: s, End: offsetToPosition(lines, end)}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// wordAt extracts the identifier around the given byte offset and the
// offset where it starts. The cursor can be inside or at the end of the
// identifier; in both cases the full identifier is returned. An empty
// string means the offset does not touch an identifier.
func wordAt(content string, offset int) (word string, start int) {
	if offset < 0 || offset > len(content) {
		return "", 0
	}
	start = offset
	for start > 0 && isIdentChar(content[start-1]) {
		start--
	}
	end := offset
	for end < len(content) && isIdentChar(content[end]) {
		end++
	}
	return content[start:end], start
}

func isIdentChar(c byte) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	return c == '_' || c == '$'
}

// identOffsets returns the offsets of every whole-identifier occurrence
// of name in content.
func identOffsets(content, name string) []int {
	if name == "" {
		return nil
	}
	var offsets []int
	from := 0
	for {
		i := strings.Index(content[from:], name)
		if i < 0 {
			return offsets
		}
		at := from + i
		before := at == 0 || !isIdentChar(content[at-1])
		after := at+len(name) == len(content) || !isIdentChar(content[at+len(name)])
		if before && after {
			offsets = append(offsets, at)
		}
		from = at + len(name)
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
