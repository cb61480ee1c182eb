package workspace

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/clawchat/internal/domain"
)

// Shared board files.
const (
	BoardFile   = "BOARD.md"
	BacklogFile = "BACKLOG.md"
)

// ReadBoard returns a markdown file that sits directly inside the shared
// directory. Names with a path separator or without a .md extension fail
// with ErrInvalidPath.
func ReadBoard(sharedDir, name string) (domain.BoardFile, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." ||
		!strings.EqualFold(filepath.Ext(name), ".md") {
		return domain.BoardFile{File: name}, ErrInvalidPath
	}

	ws := New(sharedDir)
	if !ws.Exists() {
		return domain.BoardFile{File: name}, ErrNotFound
	}
	info, err := ws.Stat(name)
	if err != nil {
		return domain.BoardFile{File: name}, err
	}
	content, err := ws.ReadFile(name)
	if err != nil {
		return domain.BoardFile{File: name}, err
	}

	return domain.BoardFile{
		File:      name,
		Content:   content.Content,
		UpdatedAt: info.ModTime().UTC().Format(time.RFC3339),
	}, nil
}
