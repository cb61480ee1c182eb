package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "SOUL.md"), []byte("be kind"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "MEMORY.md"), []byte(strings.Repeat("記", 2500)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "OTHER.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "TOOLS.md"), 0o755))

	docs := New(root).Docs()
	assert.Len(t, docs, 2)
	assert.Equal(t, "be kind", docs["SOUL.md"])
	assert.Equal(t, DocLimit, len([]rune(docs["MEMORY.md"])))
	assert.NotContains(t, docs, "TOOLS.md")
}

func TestDocsMissingWorkspace(t *testing.T) {
	assert.Empty(t, New("").Docs())
	assert.Empty(t, New(filepath.Join(t.TempDir(), "missing")).Docs())
}

func TestHasSchedule(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"headings only", "# Heartbeat\n\n## Tasks\n", false},
		{"single-line comment", "# Heartbeat\n<!-- add tasks here -->\n", false},
		{"multi-line comment", "<!--\n- check inbox\n-->\n", false},
		{"task", "# Heartbeat\n- check inbox every hour\n", true},
		{"task after comment", "<!-- note --> check inbox\n", true},
		{"task before comment", "check inbox <!-- note -->\n", true},
		{"task after multi-line comment", "<!--\nhidden\n-->\n- visible\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(root, HeartbeatFile), []byte(tt.content), 0o644))
			assert.Equal(t, tt.want, New(root).HasSchedule())
		})
	}
}

func TestHasScheduleMissingFile(t *testing.T) {
	assert.False(t, New(t.TempDir()).HasSchedule())
	assert.False(t, New("").HasSchedule())
}

func TestDocsAndScheduleSkipSymlinksOutsideWorkspace(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.md")
	require.NoError(t, os.WriteFile(secret, []byte("- top secret"), 0o644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "USER.md"), []byte("hi"), 0o644))
	for _, name := range []string{"SOUL.md", HeartbeatFile} {
		if err := os.Symlink(secret, filepath.Join(root, name)); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	ws := New(root)
	assert.Equal(t, map[string]string{"USER.md": "hi"}, ws.Docs())
	assert.False(t, ws.HasSchedule())
}
