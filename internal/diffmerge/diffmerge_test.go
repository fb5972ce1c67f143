package diffmerge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/javanhut/simplegit/internal/workspace"
)

func collect(t *testing.T, d *Differ, oldDir, newDir string) []string {
	t.Helper()
	var lines []string
	for line, err := range d.Diff(oldDir, newDir, "old", "new") {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	return lines
}

func TestDiffOfSameCommitIsEmpty(t *testing.T) {
	dir := fs.NewDir(t, "commit",
		fs.WithFile("a.txt", "1\n2\n"),
		fs.WithFile("commit_info.json", `{"id":"x"}`),
		fs.WithDir("sub", fs.WithFile("b.txt", "b")),
	)
	d := NewDiffer(DefaultContext, nil, "commit_info.json")

	assert.Empty(t, collect(t, d, dir.Path(), dir.Path()))
}

func TestDiffShowsChangedLines(t *testing.T) {
	oldDir := fs.NewDir(t, "old", fs.WithFile("a.txt", "1"))
	newDir := fs.NewDir(t, "new", fs.WithFile("a.txt", "2"))
	d := NewDiffer(DefaultContext, nil)

	lines := collect(t, d, oldDir.Path(), newDir.Path())

	assert.Contains(t, lines, "-1")
	assert.Contains(t, lines, "+2")
	assert.Contains(t, lines, "--- old/a.txt")
	assert.Contains(t, lines, "+++ new/a.txt")
}

func TestDiffReportsRemovedFilesButNotAddedOnes(t *testing.T) {
	oldDir := fs.NewDir(t, "old",
		fs.WithFile("keep.txt", "same"),
		fs.WithDir("sub", fs.WithFile("gone.txt", "x")),
	)
	newDir := fs.NewDir(t, "new",
		fs.WithFile("keep.txt", "same"),
		fs.WithFile("fresh.txt", "brand new"),
	)
	d := NewDiffer(DefaultContext, nil)

	lines := collect(t, d, oldDir.Path(), newDir.Path())

	assert.Equal(t, []string{RemovedNotice("sub/gone.txt", "new")}, lines)
}

func TestDiffSkipsMetadataAndFilteredNames(t *testing.T) {
	oldDir := fs.NewDir(t, "old",
		fs.WithFile("commit_info.json", `{"id":"1"}`),
		fs.WithDir(".simplegit", fs.WithFile("config.json", "a")),
	)
	newDir := fs.NewDir(t, "new",
		fs.WithFile("commit_info.json", `{"id":"2"}`),
	)
	d := NewDiffer(DefaultContext, workspace.Exclude(".simplegit"), "commit_info.json")

	assert.Empty(t, collect(t, d, oldDir.Path(), newDir.Path()))
}

func TestDiffDropsInvalidUTF8(t *testing.T) {
	oldDir := fs.NewDir(t, "old", fs.WithFile("bin", "ok\xff\n"))
	newDir := fs.NewDir(t, "new", fs.WithFile("bin", "ok\n"))
	d := NewDiffer(DefaultContext, nil)

	assert.Empty(t, collect(t, d, oldDir.Path(), newDir.Path()))
}

func TestDiffComparesSymlinkTargets(t *testing.T) {
	oldDir := fs.NewDir(t, "old")
	newDir := fs.NewDir(t, "new")
	require.NoError(t, os.Symlink("a.txt", filepath.Join(oldDir.Path(), "link")))
	require.NoError(t, os.Symlink("b.txt", filepath.Join(newDir.Path(), "link")))
	d := NewDiffer(DefaultContext, nil)

	lines := collect(t, d, oldDir.Path(), newDir.Path())

	assert.Contains(t, lines, "--> a.txt")
	assert.Contains(t, lines, "+-> b.txt")
}

func TestDiffStopsWhenConsumerBreaks(t *testing.T) {
	oldDir := fs.NewDir(t, "old", fs.WithFile("a.txt", "1\n2\n3\n"), fs.WithFile("b.txt", "x"))
	newDir := fs.NewDir(t, "new", fs.WithFile("a.txt", "3\n2\n1\n"))
	d := NewDiffer(DefaultContext, nil)

	n := 0
	for range d.Diff(oldDir.Path(), newDir.Path(), "old", "new") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestDiffOfMissingCommitYieldsError(t *testing.T) {
	d := NewDiffer(DefaultContext, nil)
	var errs []error
	for _, err := range d.Diff(filepath.Join(t.TempDir(), "nope"), t.TempDir(), "a", "b") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestStat(t *testing.T) {
	oldDir := fs.NewDir(t, "old",
		fs.WithFile("a.txt", "1"),
		fs.WithFile("b.txt", "same"),
		fs.WithFile("c.txt", "gone"),
	)
	newDir := fs.NewDir(t, "new",
		fs.WithFile("a.txt", "2"),
		fs.WithFile("b.txt", "same"),
	)
	d := NewDiffer(DefaultContext, nil)

	st, err := d.Stat(oldDir.Path(), newDir.Path(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, st.Changed)
	assert.Equal(t, []string{"c.txt"}, st.Removed)
}
