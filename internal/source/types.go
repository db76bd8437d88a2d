package source

import "fmt"

// FileID indexes a File within its FileSet.
type FileID uint32

// FileFlags records how a file's content was obtained.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // из памяти, не с диска
	FileHadBOM                               // UTF-8 BOM был срезан
	FileNormalizedCRLF                       // CRLF заменены на LF
)

// Has reports whether every bit of want is set.
func (f FileFlags) Has(want FileFlags) bool {
	return f&want == want
}

// File is one loaded buffer. Content, LineIdx and Hash never change after
// the file is added; spans into it stay valid for the FileSet's lifetime.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte // blake3(Content)
	Flags   FileFlags
}

// LineCol is a 1-based line and column; columns count bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}
