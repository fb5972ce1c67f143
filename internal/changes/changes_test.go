package changes

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/javanhut/simplegit/internal/workspace"
)

func tree() []fs.PathOp {
	return []fs.PathOp{
		fs.WithFile("a.txt", "1"),
		fs.WithDir("src",
			fs.WithFile("main.go", "package main"),
			fs.WithDir("util", fs.WithFile("util.go", "package util")),
		),
	}
}

func setup(t *testing.T) (*Detector, *fs.Dir, *fs.Dir) {
	t.Helper()
	work := fs.NewDir(t, "work", append(tree(), fs.WithDir(".simplegit"))...)
	commit := fs.NewDir(t, "commit", append(tree(), fs.WithFile("commit_info.json", "{}"))...)
	d := NewDetector(work.Path(), workspace.Exclude(".simplegit"), "commit_info.json")
	return d, work, commit
}

func TestIdenticalTreeHasNoChanges(t *testing.T) {
	d, _, commit := setup(t)

	changed, err := d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.False(t, changed)

	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestModifiedFileIsDetectedByContent(t *testing.T) {
	d, work, commit := setup(t)
	// Same size, different bytes.
	require.NoError(t, os.WriteFile(work.Join("a.txt"), []byte("2"), 0644))

	changed, err := d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.True(t, changed)

	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Modified, Path: "a.txt"}}, status)
}

func TestNewTopLevelEntryIsAdded(t *testing.T) {
	d, work, commit := setup(t)
	require.NoError(t, os.WriteFile(work.Join("b.txt"), []byte("new"), 0644))

	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Added, Path: "b.txt"}}, status)
}

func TestRemovedTopLevelEntryIsDeleted(t *testing.T) {
	d, work, commit := setup(t)
	require.NoError(t, os.Remove(work.Join("a.txt")))

	changed, err := d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.True(t, changed)

	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Deleted, Path: "a.txt"}}, status)
}

func TestDirectoryComparisonIsShallow(t *testing.T) {
	d, work, commit := setup(t)

	// Editing a file inside an existing directory is not seen.
	require.NoError(t, os.WriteFile(work.Join("src", "main.go"), []byte("package changed"), 0644))
	// Neither is a change two levels down.
	require.NoError(t, os.WriteFile(work.Join("src", "util", "extra.go"), []byte("x"), 0644))

	changed, err := d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.False(t, changed)

	// Adding an immediate child is.
	require.NoError(t, os.WriteFile(work.Join("src", "new.go"), []byte("x"), 0644))
	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Modified, Path: "src"}}, status)
}

func TestTypeChangeIsModified(t *testing.T) {
	d, work, commit := setup(t)
	require.NoError(t, os.Remove(work.Join("a.txt")))
	require.NoError(t, os.Mkdir(work.Join("a.txt"), 0755))

	status, err := d.Status(commit.Path())
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Modified, Path: "a.txt"}}, status)
}

func TestSymlinkComparedByTarget(t *testing.T) {
	d, work, commit := setup(t)
	require.NoError(t, os.Symlink("a.txt", work.Join("link")))
	require.NoError(t, os.Symlink("a.txt", commit.Join("link")))

	changed, err := d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.Remove(work.Join("link")))
	require.NoError(t, os.Symlink("src", work.Join("link")))
	changed, err = d.HasChanges(commit.Path())
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStatusWithoutCommitListsEverything(t *testing.T) {
	d, _, _ := setup(t)

	status, err := d.Status("")
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Added, Path: "a.txt"}, {Kind: Added, Path: "src"}}, status)
}

func TestSameContentLargeFiles(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 3*chunkSize+17)
	for i := range big {
		big[i] = byte(i)
	}
	a, b := dir+"/a", dir+"/b"
	require.NoError(t, os.WriteFile(a, big, 0644))
	require.NoError(t, os.WriteFile(b, big, 0644))

	same, err := sameContent(a, b, int64(len(big)), int64(len(big)))
	require.NoError(t, err)
	assert.True(t, same)

	big[len(big)-1]++
	require.NoError(t, os.WriteFile(b, big, 0644))
	same, err = sameContent(a, b, int64(len(big)), int64(len(big)))
	require.NoError(t, err)
	assert.False(t, same)
}
