package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	data := []byte("name: Jane\nskills:\n  - Go\n")
	require.NoError(t, w.Write(data))
	assert.Equal(t, string(data), buf.String())
}

func TestStdoutWriter_NilDefault(t *testing.T) {
	// When nil is passed, it defaults to os.Stdout; just verify it doesn't panic.
	w := NewStdoutWriter(nil)
	assert.NotNil(t, w)
}

func TestFileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output", "test.yaml")

	w := NewFileWriter(path)
	data := []byte("name: Jane\nskills:\n  - Go\n")
	require.NoError(t, w.Write(data))

	// Verify file exists with correct content.
	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	// Verify file permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "test.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("test")))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")

	w := NewFileWriter(path, WithPermissions(0o600))
	require.NoError(t, w.Write([]byte("secret")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_OverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.yaml")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644)) //nolint:gosec // test

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("new")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFileWriter_Path(t *testing.T) {
	w := NewFileWriter("/tmp/test.yaml")
	assert.Equal(t, "/tmp/test.yaml", w.Path())
}

func TestFileWriter_InvalidPath(t *testing.T) {
	w := NewFileWriter("/dev/null/impossible/path.yaml")
	err := w.Write([]byte("data"))
	assert.Error(t, err)
}

func TestFileWriter_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("a: 1\n")))
	require.NoError(t, w.Write([]byte("a: 2\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cv.yaml", entries[0].Name())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	_, ok := New("", &buf).(*StdoutWriter)
	assert.True(t, ok)

	_, ok = New("-", &buf).(*StdoutWriter)
	assert.True(t, ok)

	fw, ok := New("out.yaml", &buf).(*FileWriter)
	require.True(t, ok)
	assert.Equal(t, "out.yaml", fw.Path())
}

// ---------------------------------------------------------------------------
// ReadInput
// ---------------------------------------------------------------------------

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	data, err := ReadInput(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
}

func TestReadInput_Stdin(t *testing.T) {
	data, err := ReadInput("-", strings.NewReader("from: stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from: stdin\n", string(data))
}

func TestReadInput_Missing(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening input")
}

func TestReadInput_TooLarge(t *testing.T) {
	r := io.LimitReader(zeroReader{}, maxInputSize+10)

	_, err := ReadInput("-", r)
	require.ErrorIs(t, err, ErrInputTooLarge)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
