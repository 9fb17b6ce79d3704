package tusclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) *LocalFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	f, err := OpenLocalFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestLocalFile_ReadChunk_Sequence(t *testing.T) {
	f := writeTempFile(t, "HELLOWORLD")

	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)

	chunk, err := f.ReadChunk(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "HELL", string(chunk))

	chunk, err = f.ReadChunk(4, 4)
	require.NoError(t, err)
	assert.Equal(t, "OWOR", string(chunk))

	chunk, err = f.ReadChunk(8, 4)
	require.NoError(t, err)
	assert.Equal(t, "LD", string(chunk))

	chunk, err = f.ReadChunk(10, 4)
	require.NoError(t, err)
	assert.Empty(t, chunk)
}

func TestLocalFile_ReadChunk_ExactBoundary(t *testing.T) {
	f := writeTempFile(t, "1234")
	chunk, err := f.ReadChunk(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "1234", string(chunk))
}

func TestLocalFile_OpenMissing(t *testing.T) {
	_, err := OpenLocalFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
	var ioErr *IoError
	assert.ErrorAs(t, err, &ioErr)
}
