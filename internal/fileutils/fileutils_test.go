package fileutils_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/spendwise/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.csv")))
	// directories are not files
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "nonexistent")))

	testFile := filepath.Join(tmpDir, "test.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestEnsureDirectoryExists(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "new", "nested", "dir")

	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))

	// existing and empty paths are fine
	assert.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.NoError(t, fileutils.EnsureDirectoryExists(""))
}

func TestOpenInput(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0600))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "file", path: path, want: "from file"},
		{name: "dash reads stdin", path: "-", want: "from stdin"},
		{name: "empty reads stdin", path: "", want: "from stdin"},
		{name: "missing", path: filepath.Join(tmpDir, "missing.csv"), wantErr: "file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := fileutils.OpenInput(tt.path, strings.NewReader("from stdin"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer rc.Close()

			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestCreateOutput(t *testing.T) {
	t.Run("file with missing parents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "export.csv")
		w, err := fileutils.CreateOutput(path, io.Discard)
		require.NoError(t, err)
		_, err = io.WriteString(w, "a,b\n")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(data))
	})

	t.Run("dash writes stdout", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := fileutils.CreateOutput(fileutils.Stdio, &buf)
		require.NoError(t, err)
		_, err = io.WriteString(w, "hello")
		require.NoError(t, err)
		require.NoError(t, w.Close())
		assert.Equal(t, "hello", buf.String())
	})
}

func TestListFilesWithExtension(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "2025")
	require.NoError(t, os.MkdirAll(nested, 0750))

	for _, f := range []string{
		filepath.Join(tmpDir, "b.csv"),
		filepath.Join(tmpDir, "a.CSV"),
		filepath.Join(tmpDir, "notes.txt"),
		filepath.Join(nested, "jan.csv"),
	} {
		require.NoError(t, os.WriteFile(f, []byte("test"), 0600))
	}

	files, err := fileutils.ListFilesWithExtension(tmpDir, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(nested, "jan.csv"),
		filepath.Join(tmpDir, "a.CSV"),
		filepath.Join(tmpDir, "b.csv"),
	}, files)

	files, err = fileutils.ListFilesWithExtension(tmpDir, ".xml")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = fileutils.ListFilesWithExtension(filepath.Join(tmpDir, "nonexistent"), ".csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory does not exist")
}
