// Package workspace gives read-only access to agent workspace directories.
// Every user-supplied path is checked against the workspace root before
// anything is read.
package workspace

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/soyeahso/clawchat/internal/domain"
)

// MaxFileSize caps the files returned by ReadFile.
const MaxFileSize = 5 << 20

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("path not found")
	ErrNoWorkspace = errors.New("workspace not found")
)

// TooLargeError reports a file over MaxFileSize.
type TooLargeError struct {
	Size int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File too large (%d bytes)", e.Size)
}

var imageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
}

// Workspace is an agent workspace rooted at Root.
type Workspace struct {
	Root string
}

// New returns the workspace rooted at dir.
func New(dir string) Workspace {
	return Workspace{Root: dir}
}

// Exists reports whether the root is an existing directory.
func (w Workspace) Exists() bool {
	if w.Root == "" {
		return false
	}
	info, err := os.Stat(w.Root)
	return err == nil && info.IsDir()
}

// Resolve maps a slash-separated path relative to the root onto the real
// filesystem path. Paths that leave the root, lexically or through a
// symlink, fail with ErrInvalidPath.
func (w Workspace) Resolve(rel string) (string, error) {
	if w.Root == "" {
		return "", ErrNoWorkspace
	}
	if strings.ContainsRune(rel, 0) || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", ErrInvalidPath
	}

	root, err := filepath.Abs(w.Root)
	if err != nil {
		return "", fmt.Errorf("resolving workspace root: %w", err)
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, full) {
		return "", ErrInvalidPath
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoWorkspace, w.Root)
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}
	if !within(realRoot, resolved) {
		return "", ErrInvalidPath
	}
	return resolved, nil
}

func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

// Stat resolves rel and returns its file info.
func (w Workspace) Stat(rel string) (fs.FileInfo, error) {
	p, err := w.Resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// List returns the entries of the directory rel, files first and each group
// sorted by name. Entry paths are relative to the listed directory. A
// workspace without a root directory lists as empty.
func (w Workspace) List(rel string) (domain.FileListing, error) {
	listing := domain.FileListing{Workspace: w.Root, Path: rel, Files: []domain.FileEntry{}}
	if rel == "" && !w.Exists() {
		return listing, nil
	}

	dir, err := w.Resolve(rel)
	if err != nil {
		return listing, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return listing, nil
		}
		return listing, fmt.Errorf("listing %s: %w", rel, err)
	}

	for _, e := range entries {
		name := e.Name()
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			// Dangling symlinks are listed as files.
			info, err = e.Info()
			if err != nil {
				continue
			}
		}
		entry := domain.FileEntry{Name: name, Path: name, Type: domain.EntryFile}
		if info.IsDir() {
			entry.Type = domain.EntryDirectory
		} else {
			size := info.Size()
			entry.Size = &size
		}
		listing.Files = append(listing.Files, entry)
	}

	slices.SortFunc(listing.Files, func(a, b domain.FileEntry) int {
		if a.Type != b.Type {
			if a.Type == domain.EntryFile {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return listing, nil
}

// ReadFile returns the content of the file rel. Images are returned as
// base64 data URLs; anything else as text with invalid UTF-8 removed.
func (w Workspace) ReadFile(rel string) (domain.FileContent, error) {
	p, err := w.Resolve(rel)
	if err != nil {
		return domain.FileContent{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return domain.FileContent{}, fmt.Errorf("stat %s: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return domain.FileContent{}, ErrNotFound
	}
	if info.Size() > MaxFileSize {
		return domain.FileContent{}, &TooLargeError{Size: info.Size()}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return domain.FileContent{}, fmt.Errorf("reading %s: %w", rel, err)
	}

	out := domain.FileContent{Path: rel, Size: info.Size()}
	if mime, ok := imageTypes[extension(rel)]; ok {
		out.Content = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
		out.IsImage = true
		return out, nil
	}
	out.Content = strings.ToValidUTF8(string(data), "")
	return out, nil
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
