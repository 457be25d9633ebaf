package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileTool_Execute(t *testing.T) {
	tool := &WriteFileTool{}
	path := filepath.Join(t.TempDir(), "reports", "chunks.md")

	result, err := tool.Execute(map[string]any{
		"filename": path,
		"content":  "# Review Chunks\n",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "Successfully wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Review Chunks\n", string(data))
}

func TestWriteFileTool_Replace(t *testing.T) {
	tool := &WriteFileTool{}
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.md")
	require.NoError(t, os.WriteFile(path, []byte("an older and much longer report\n"), 0o600))

	_, err := tool.Execute(map[string]any{"filename": path, "content": "new\n"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileTool_DirectoryTarget(t *testing.T) {
	tool := &WriteFileTool{}
	dir := t.TempDir()

	_, err := tool.Execute(map[string]any{"filename": dir, "content": "x"})
	assert.ErrorContains(t, err, "is a directory")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileTool_MissingArgs(t *testing.T) {
	tool := &WriteFileTool{}

	_, err := tool.Execute(map[string]any{"content": "x"})
	assert.EqualError(t, err, "filename parameter required")

	_, err = tool.Execute(map[string]any{"filename": filepath.Join(t.TempDir(), "a.md")})
	assert.EqualError(t, err, "content parameter required")
}

func TestReadFileTool_Execute(t *testing.T) {
	tool := &ReadFileTool{}
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def main():\n    pass\n"), 0o644))

	result, err := tool.Execute(map[string]any{"filename": path})
	require.NoError(t, err)
	assert.Equal(t, "def main():\n    pass\n", result)
}

func TestReadFileTool_Errors(t *testing.T) {
	tool := &ReadFileTool{}

	_, err := tool.Execute(map[string]any{})
	assert.EqualError(t, err, "filename parameter required")

	_, err = tool.Execute(map[string]any{"filename": filepath.Join(t.TempDir(), "missing.py")})
	assert.ErrorContains(t, err, "failed to read file")
}

func TestReadFileTool_Directory(t *testing.T) {
	tool := &ReadFileTool{}

	_, err := tool.Execute(map[string]any{"filename": t.TempDir()})
	assert.ErrorContains(t, err, "is a directory")
}
