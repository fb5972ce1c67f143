package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/snapshot"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), CatalogFile)
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func info(id, title string) snapshot.Info {
	return snapshot.Info{ID: id, Title: title, Timestamp: id, Branch: "main"}
}

func TestPutAndGetCommit(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.PutCommit(info("20240102000000", "second")))
	require.NoError(t, db.PutCommit(info("20240101000000", "first")))

	got, err := db.GetCommit("20240101000000")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	_, err = db.GetCommit("19990101000000")
	assert.ErrorIs(t, err, sgErrors.ErrNotFound)

	all, err := db.Commits()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "20240101000000", all[0].ID)
	assert.Equal(t, "20240102000000", all[1].ID)
}

func TestReplaceRebuildsCatalog(t *testing.T) {
	db, _ := openTestDB(t)
	require.NoError(t, db.PutCommit(info("20240101000000", "stale")))

	require.NoError(t, db.Replace([]snapshot.Info{info("20240301000000", "fresh")}))

	all, err := db.Commits()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].Title)
}

func TestSecondOpenIsRejectedWhileLocked(t *testing.T) {
	_, path := openTestDB(t)

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrLocked)
}
