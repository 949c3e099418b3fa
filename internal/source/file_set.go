package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ErrOutOfRange reports an offset, line or column that falls outside the
// referenced file. It always indicates a defect in the calling code, never in
// the user's source, so callers must treat it as fatal rather than recover.
var ErrOutOfRange = errors.New("position out of range")

// FileSet registers source files, assigns each a stable FileID and resolves
// byte offsets to line/column coordinates and back.
//
// Registration follows a single-writer-then-many-readers pattern: register
// everything before fanning out parallel passes. Files are immutable once
// registered, so resolution needs no locking.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// SetBaseDir sets the base directory used by relative path formatting.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add registers content under path and returns a fresh FileID. The content is
// stored as-is and must not be mutated by the caller afterwards; run
// NormalizeContent first when the bytes come straight from disk.
//
// Add never fails and never deduplicates: registering the same path twice
// yields two distinct FileIDs, with Latest pointing at the newer one. Callers
// that want deduplication do it themselves.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// AddVirtual registers in-memory content (stdin, tests, generated sources).
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Has reports whether id names a registered file.
func (fileSet *FileSet) Has(id FileID) bool {
	return int(id) < len(fileSet.files)
}

// Get returns the registration record for id, or false for an unknown id.
func (fileSet *FileSet) Get(id FileID) (*File, bool) {
	if !fileSet.Has(id) {
		return nil, false
	}
	return &fileSet.files[id], true
}

// Latest returns the most recently registered FileID for path, if any.
func (fileSet *FileSet) Latest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len returns the number of registered files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// FileName returns the display path for id, or a placeholder for unknown ids.
func (fileSet *FileSet) FileName(id FileID) string {
	f, ok := fileSet.Get(id)
	if !ok {
		return "<unknown file>"
	}
	return f.Path
}

// ResolveOffset converts a byte offset in file id to line/column. The offset
// may equal the content length, denoting the end-of-file position; anything
// past that is ErrOutOfRange, as is an unregistered id.
func (fileSet *FileSet) ResolveOffset(id FileID, offset uint32) (LineCol, error) {
	f, ok := fileSet.Get(id)
	if !ok {
		return LineCol{}, fmt.Errorf("file %d: %w", id, ErrOutOfRange)
	}
	if int(offset) > len(f.Content) {
		return LineCol{}, fmt.Errorf("offset %d in %s (len %d): %w", offset, f.Path, len(f.Content), ErrOutOfRange)
	}
	return toLineCol(f.Content, f.LineIdx, offset), nil
}

// Offset is the inverse of ResolveOffset: it converts a 1-based line/column
// (column in code points) back to a byte offset. Wherever both are defined,
// Offset(ResolveOffset(off)) == off.
func (fileSet *FileSet) Offset(id FileID, pos LineCol) (uint32, error) {
	f, ok := fileSet.Get(id)
	if !ok {
		return 0, fmt.Errorf("file %d: %w", id, ErrOutOfRange)
	}
	if pos.Line == 0 || pos.Col == 0 || int(pos.Line) > len(f.LineIdx)+1 {
		return 0, fmt.Errorf("position %d:%d in %s: %w", pos.Line, pos.Col, f.Path, ErrOutOfRange)
	}
	// Columns 1..N+1 are valid for a line of N runes; column N+1 is the
	// position at the line terminator (or EOF on the last line).
	off := lineStartOffset(f.LineIdx, int(pos.Line)-1)
	end := lineEndOffset(f, int(pos.Line)-1)
	for col := uint32(1); col < pos.Col; col++ {
		if off >= end {
			return 0, fmt.Errorf("position %d:%d in %s: %w", pos.Line, pos.Col, f.Path, ErrOutOfRange)
		}
		_, size := utf8.DecodeRune(f.Content[off:end])
		off += uint32(size)
	}
	return off, nil
}

// Resolve converts both endpoints of a span into line/column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol, err error) {
	if start, err = fileSet.ResolveOffset(span.File, span.Start); err != nil {
		return LineCol{}, LineCol{}, err
	}
	if end, err = fileSet.ResolveOffset(span.File, span.End); err != nil {
		return LineCol{}, LineCol{}, err
	}
	return start, end, nil
}

// LineText returns the text of the given 1-based line without its
// terminator. Used by renderers for context snippets.
func (fileSet *FileSet) LineText(id FileID, line uint32) (string, error) {
	f, ok := fileSet.Get(id)
	if !ok {
		return "", fmt.Errorf("file %d: %w", id, ErrOutOfRange)
	}
	if line == 0 || int(line) > len(f.LineIdx)+1 {
		return "", fmt.Errorf("line %d in %s: %w", line, f.Path, ErrOutOfRange)
	}
	start := lineStartOffset(f.LineIdx, int(line)-1)
	end := lineEndOffset(f, int(line)-1)
	return string(f.Content[start:end]), nil
}

// lineEndOffset returns the byte offset of the terminator that ends the
// 0-based line, or the content length for the final line.
func lineEndOffset(f *File, line int) uint32 {
	if line < len(f.LineIdx) {
		return f.LineIdx[line]
	}
	return uint32(len(f.Content))
}

// PathMode selects how PathFor formats a file path for display.
type PathMode uint8

const (
	// PathAuto keeps short or relative paths as-is and shortens long
	// absolute ones to their basename.
	PathAuto PathMode = iota
	PathAbsolute
	PathRelative
	PathBasename
)

// PathFor formats the display path for id according to mode. Relative paths
// are computed against the FileSet's base directory.
func (fileSet *FileSet) PathFor(id FileID, mode PathMode) string {
	f, ok := fileSet.Get(id)
	if !ok {
		return "<unknown file>"
	}
	switch mode {
	case PathAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path

	case PathRelative:
		if rel, err := filepath.Rel(fileSet.BaseDir(), f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path

	case PathBasename:
		return filepath.Base(f.Path)

	default:
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	}
}
