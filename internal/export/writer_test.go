package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifactCreatesParents(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, writeArtifact(root, "taxon/deep/1.html", []byte("<html>")))

	data, err := os.ReadFile(filepath.Join(root, "taxon", "deep", "1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestWriteArtifactOverwrites(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, writeArtifact(root, "a.json", []byte("old")))
	require.NoError(t, writeArtifact(root, "a.json", []byte("new")))

	data, err := os.ReadFile(filepath.Join(root, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteArtifactRejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()

	assert.Error(t, writeArtifact(root, "../outside.html", []byte("x")))
	assert.Error(t, writeArtifact(root, "/etc/passwd", []byte("x")))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "outside.html"))
}

func TestWriteArtifactLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, writeArtifact(root, "taxon/1.html", []byte("ok")))

	entries, err := os.ReadDir(filepath.Join(root, "taxon"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1.html", entries[0].Name())
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "site.css"), []byte("body{}"), 0o600))

	dst := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, copyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}
