package repo

import (
	"fmt"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Restore overwrites the working tree with a commit of the current branch.
// ref is a tag name or an id prefix; commits of other branches are
// reported as ErrNotFound even when their directory exists. The confirmer
// is asked before any file is touched. No commit is created.
func (r *Repository) Restore(ref string, confirm Confirmer) (*snapshot.Commit, error) {
	branch := r.state.CurrentBranch
	ix := r.index()

	prefix := ref
	if id, err := ix.Tag(ref); err == nil {
		prefix = id
	}
	id, err := ix.Find(branch, prefix)
	if err != nil {
		return nil, r.fail(err, "Failed to restore %s", ref)
	}
	commit, err := r.snapshots.Load(id)
	if err != nil {
		return nil, r.fail(err, "Failed to restore %s", ref)
	}

	if confirm == nil {
		return nil, sgErrors.Wrap(sgErrors.ErrDeclined, "restore needs confirmation")
	}
	ok, err := confirm.Confirm(fmt.Sprintf(
		"Restore the working tree to commit %s '%s'? Uncommitted changes will be overwritten.", commit.ID, commit.Title))
	if err != nil {
		return nil, r.fail(err, "Failed to confirm restore of %s", commit.ID)
	}
	if !ok {
		eventlog.Logf(r.log, "Restore of %s declined", commit.ID)
		return nil, sgErrors.Wrapf(sgErrors.ErrDeclined, "restore of %s", commit.ID)
	}

	err = r.overwrite("restore "+commit.ID, commit)
	eventlog.Logf(r.log, "Restored working tree to commit %s on branch '%s'", commit.ID, branch)
	return commit, err
}
