package domain

// File entry types.
const (
	EntryFile      = "file"
	EntryDirectory = "directory"
)

// FileEntry is one item of a workspace directory listing. Size is only set
// for files.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size *int64 `json:"size,omitempty"`
}

// FileListing is a directory listing relative to an agent workspace.
type FileListing struct {
	Workspace string      `json:"workspace"`
	Path      string      `json:"path"`
	Files     []FileEntry `json:"files"`
}

// FileContent is the content of a single workspace file. Images are carried
// as data URLs.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int64  `json:"size"`
	IsImage bool   `json:"isImage,omitempty"`
}

// BoardFile is a shared markdown file such as BOARD.md.
type BoardFile struct {
	File      string `json:"file"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Error     string `json:"error,omitempty"`
}
