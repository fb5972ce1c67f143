package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/javanhut/simplegit/internal/workspace"
)

func commitFixture(t *testing.T) *fs.Dir {
	t.Helper()
	dir := fs.NewDir(t, "commit",
		fs.WithFile("a.txt", "alpha\n"),
		fs.WithFile("commit_info.json", `{"id":"20240101000000"}`),
		fs.WithDir("sub", fs.WithFile("b.txt", "beta\n")),
		fs.WithDir("skip", fs.WithFile("c.txt", "hidden")),
	)
	require.NoError(t, os.Symlink("a.txt", filepath.Join(dir.Path(), "link")))
	return dir
}

func TestWriteAndVerify(t *testing.T) {
	src := commitFixture(t)
	location := t.TempDir()

	res, err := Write(src.Path(), location, "20240101000000_first", workspace.Exclude("skip"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(location, "20240101000000_first.tar.zst"), res.Path)
	assert.Len(t, res.Sum, 64)
	assert.Positive(t, res.Size)
	assert.Equal(t, 4, res.Files)

	sidecar, err := os.ReadFile(res.Path + SumExt)
	require.NoError(t, err)
	assert.Equal(t, res.Sum+"  20240101000000_first.tar.zst\n", string(sidecar))

	entries, err := Verify(res.Path)
	require.NoError(t, err)
	// a.txt, commit_info.json, link, sub/, sub/b.txt
	assert.Equal(t, 5, entries)

	paths, err := List(location)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Path}, paths)
}

func TestVerifyDetectsTampering(t *testing.T) {
	src := commitFixture(t)
	location := t.TempDir()
	res, err := Write(src.Path(), location, "snap", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(res.Path, data, 0644))

	_, err = Verify(res.Path)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestVerifyWithoutSidecar(t *testing.T) {
	src := commitFixture(t)
	location := t.TempDir()
	res, err := Write(src.Path(), location, "snap", nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(res.Path+SumExt))

	_, err = Verify(res.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRewriteReplacesArchive(t *testing.T) {
	src := fs.NewDir(t, "commit", fs.WithFile("a.txt", "one"))
	location := t.TempDir()

	first, err := Write(src.Path(), location, "snap", nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(src.Path(), "a.txt"), []byte("two, longer"), 0644))
	second, err := Write(src.Path(), location, "snap", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.Sum, second.Sum)
	_, err = Verify(second.Path)
	require.NoError(t, err)

	paths, err := List(location)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
