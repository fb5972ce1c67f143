package errors

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefinementsMatchParent(t *testing.T) {
	err := Wrapf(ErrAmbiguous, "prefix %q", "2024")
	assert.True(t, Is(err, ErrAmbiguous))
	assert.True(t, Is(err, ErrInvalidOperation))
	assert.False(t, Is(err, ErrNotFound))
	assert.Equal(t, `prefix "2024": ambiguous commit id: invalid operation`, err.Error())

	assert.True(t, Is(Wrap(ErrInvalidName, "branch"), ErrInvalidOperation))
}

func TestPartialCopyError(t *testing.T) {
	assert.NoError(t, NewPartialCopyError("commit", nil))

	err := NewPartialCopyError("merge", []CopyFailure{
		{Path: "a.txt", Err: os.ErrPermission},
		{Path: "dir", Err: errors.New("disk full")},
	})

	assert.True(t, Is(err, ErrPartialCopy))
	assert.True(t, Is(err, os.ErrPermission))

	var pce *PartialCopyError
	assert.True(t, As(err, &pce))
	assert.Equal(t, "merge", pce.Op)
	assert.Len(t, pce.Failures, 2)

	var cf CopyFailure
	assert.True(t, As(err, &cf))
	assert.Equal(t, "a.txt", cf.Path)

	assert.Equal(t, "merge: 2 entries failed: copy a.txt: permission denied; copy dir: disk full", err.Error())
}
