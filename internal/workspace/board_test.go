package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBoard(t *testing.T) {
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, BoardFile), []byte("## Doing\n- ship it"), 0o644))

	got, err := ReadBoard(shared, BoardFile)
	require.NoError(t, err)
	assert.Equal(t, BoardFile, got.File)
	assert.Equal(t, "## Doing\n- ship it", got.Content)
	assert.NotEmpty(t, got.UpdatedAt)
}

func TestReadBoardErrors(t *testing.T) {
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, "notes.txt"), []byte("x"), 0o644))

	for _, name := range []string{"", "..", "../BOARD.md", "sub/BOARD.md", `..\BOARD.md`, "notes.txt"} {
		_, err := ReadBoard(shared, name)
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}

	_, err := ReadBoard(shared, BacklogFile)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ReadBoard(filepath.Join(shared, "missing"), BoardFile)
	assert.ErrorIs(t, err, ErrNotFound)
}
