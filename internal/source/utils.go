package source

import (
	"path/filepath"
	"slices"
	"unicode/utf8"
)

// NormalizeContent prepares raw bytes for registration: strips a UTF-8 BOM
// and rewrites CRLF terminators to LF, reporting what happened through flags.
// It is a pure transformation; reading the bytes in the first place is the
// caller's job (the core performs no file I/O).
func NormalizeContent(content []byte) ([]byte, FileFlags) {
	flags := FileFlags(0)
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Returns the (possibly shared) slice and whether anything changed.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// buildLineIndex records the byte offset of every \n in content. Line 1
// implicitly starts at offset 0 and is never stored.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// lineOf finds the 0-based line containing off: the greatest newline offset
// < off decides the line. Binary search over the newline table.
func lineOf(lineIdx []uint32, off uint32) int {
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// lineStartOffset returns the byte offset where the 0-based line begins.
func lineStartOffset(lineIdx []uint32, line int) uint32 {
	if line == 0 {
		return 0
	}
	return lineIdx[line-1] + 1
}

// toLineCol converts a byte offset into a 1-based line/column pair. This is
// the single place where byte offsets turn into display columns: the column
// counts code points between the line start and off, not bytes, so multi-byte
// runes occupy one column each. Span arithmetic everywhere else stays in
// bytes for O(1) slicing.
func toLineCol(content []byte, lineIdx []uint32, off uint32) LineCol {
	line := lineOf(lineIdx, off)
	start := lineStartOffset(lineIdx, line)
	col := utf8.RuneCount(content[start:off])
	return LineCol{Line: uint32(line + 1), Col: uint32(col + 1)}
}

func normalizePath(p string) string {
	// one canonical form so cross-platform diffs stay stable
	return filepath.ToSlash(filepath.Clean(p))
}
