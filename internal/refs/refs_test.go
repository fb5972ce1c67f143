package refs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
)

func newIndex() (*Index, *config.State) {
	st := config.NewState("/tmp/logs")
	return New(st), st
}

func TestCreateAndSwitchBranch(t *testing.T) {
	ix, st := newIndex()

	require.NoError(t, ix.CreateBranch("feat"))
	assert.ErrorIs(t, ix.CreateBranch("feat"), sgErrors.ErrAlreadyExists)
	assert.ErrorIs(t, ix.CreateBranch("main"), sgErrors.ErrAlreadyExists)

	require.NoError(t, ix.SwitchBranch("feat"))
	assert.Equal(t, "feat", st.CurrentBranch)
	assert.ErrorIs(t, ix.SwitchBranch("nope"), sgErrors.ErrNotFound)
	assert.Equal(t, "feat", ix.Current())

	branches := ix.Branches()
	require.Len(t, branches, 2)
	assert.Equal(t, Branch{Name: "feat", Commits: []string{}, Current: true}, branches[0])
	assert.Equal(t, Branch{Name: "main", Commits: []string{}, Current: false}, branches[1])
}

func TestBranchNameValidation(t *testing.T) {
	ix, _ := newIndex()
	for _, name := range []string{"", " ", ".", "..", ".hidden", "a/b", `a\b`} {
		err := ix.CreateBranch(name)
		assert.ErrorIs(t, err, sgErrors.ErrInvalidName, name)
		assert.ErrorIs(t, err, sgErrors.ErrInvalidOperation, name)
	}
}

func TestAppendCommitRoundTripsAndStaysOrdered(t *testing.T) {
	ix, _ := newIndex()
	appended := []string{"20240101000001", "20240101000002", "20240102000000"}
	for _, id := range appended {
		require.NoError(t, ix.AppendCommit("main", id))
	}

	ids, err := ix.Commits("main")
	require.NoError(t, err)
	assert.Equal(t, appended, ids)

	latest, err := ix.Latest("main")
	require.NoError(t, err)
	assert.Equal(t, "20240102000000", latest)

	assert.True(t, ix.Contains("main", "20240101000002"))
	assert.False(t, ix.Contains("main", "20240101"))
	assert.False(t, ix.Contains("ghost", "20240101000002"))

	assert.ErrorIs(t, ix.AppendCommit("main", "20240101000002"), sgErrors.ErrInvalidOperation)
	assert.ErrorIs(t, ix.AppendCommit("ghost", "20250101000000"), sgErrors.ErrNotFound)

	// Callers cannot mutate the index through the returned slice.
	ids[0] = "tampered"
	again, _ := ix.Commits("main")
	assert.Equal(t, appended, again)
}

func TestLatestOnEmptyBranch(t *testing.T) {
	ix, _ := newIndex()
	_, err := ix.Latest("main")
	assert.ErrorIs(t, err, sgErrors.ErrNoCommits)
	_, err = ix.Latest("ghost")
	assert.ErrorIs(t, err, sgErrors.ErrNotFound)
}

func TestFindOnBranch(t *testing.T) {
	ix, _ := newIndex()
	require.NoError(t, ix.AppendCommit("main", "20240101000001"))
	require.NoError(t, ix.AppendCommit("main", "20240102000000"))

	id, err := ix.Find("main", "20240102")
	require.NoError(t, err)
	assert.Equal(t, "20240102000000", id)

	_, err = ix.Find("main", "2024")
	assert.ErrorIs(t, err, sgErrors.ErrAmbiguous)
	_, err = ix.Find("main", "1999")
	assert.ErrorIs(t, err, sgErrors.ErrNotFound)
	_, err = ix.Find("main", "")
	assert.ErrorIs(t, err, sgErrors.ErrNotFound)
}

func TestDeleteBranch(t *testing.T) {
	ix, _ := newIndex()
	require.NoError(t, ix.CreateBranch("feat"))

	assert.ErrorIs(t, ix.DeleteBranch("main"), sgErrors.ErrInvalidOperation)
	require.NoError(t, ix.SwitchBranch("feat"))
	assert.ErrorIs(t, ix.DeleteBranch("feat"), sgErrors.ErrInvalidOperation)
	require.NoError(t, ix.SwitchBranch("main"))
	require.NoError(t, ix.DeleteBranch("feat"))
	assert.False(t, ix.Exists("feat"))
	assert.ErrorIs(t, ix.DeleteBranch("feat"), sgErrors.ErrNotFound)
}

func TestTagsAreWriteOnce(t *testing.T) {
	ix, _ := newIndex()

	require.NoError(t, ix.CreateTag("v1", "20240101000001"))
	assert.ErrorIs(t, ix.CreateTag("v1", "20240101000001"), sgErrors.ErrAlreadyExists)
	assert.ErrorIs(t, ix.CreateTag("v1", "20240102000000"), sgErrors.ErrAlreadyExists)

	id, err := ix.Tag("v1")
	require.NoError(t, err)
	assert.Equal(t, "20240101000001", id)

	require.NoError(t, ix.CreateTag("alpha", "20240102000000"))
	assert.Equal(t, []Tag{
		{Name: "alpha", CommitID: "20240102000000"},
		{Name: "v1", CommitID: "20240101000001"},
	}, ix.Tags())

	_, err = ix.Tag("missing")
	assert.ErrorIs(t, err, sgErrors.ErrNotFound)
}

func TestWriteCacheMirrorsStateAndRemovesStale(t *testing.T) {
	dir := t.TempDir()
	ix, st := newIndex()
	require.NoError(t, ix.CreateBranch("feat"))
	require.NoError(t, ix.AppendCommit("main", "20240101000001"))
	require.NoError(t, ix.CreateTag("v1", "20240101000001"))

	require.NoError(t, WriteCache(dir, st))

	ids, err := ReadBranchCache(dir, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101000001"}, ids)
	ids, err = ReadBranchCache(dir, "feat")
	require.NoError(t, err)
	assert.Empty(t, ids)
	tagged, err := ReadTagCache(dir, "v1")
	require.NoError(t, err)
	assert.Equal(t, "20240101000001", tagged)

	require.NoError(t, ix.DeleteBranch("feat"))
	require.NoError(t, WriteCache(dir, st))
	_, err = os.Stat(filepath.Join(dir, BranchesDir, "feat.json"))
	assert.True(t, os.IsNotExist(err))
}
