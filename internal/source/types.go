package source

type (
	// FileID uniquely identifies a registered file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a file's content was obtained.
	FileFlags uint8
)

const (
	// FileVirtual indicates the content came from memory (stdin, tests, editors).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM was stripped during normalization.
	FileHadBOM
	// FileNormalizedCRLF indicates CRLF terminators were rewritten to LF.
	FileNormalizedCRLF
)

// File captures the immutable registration record for a single source file.
// Once stored in a FileSet nothing may mutate it; that guarantee is what keeps
// spans computed at any earlier point valid for the file's whole lifetime.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position: 1-based line, 1-based column counted
// in code points from the line start. Byte offsets never leak into LineCol.
type LineCol struct {
	Line uint32
	Col  uint32
}
