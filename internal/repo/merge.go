package repo

import (
	"errors"
	"fmt"

	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/snapshot"
	"github.com/javanhut/simplegit/internal/workspace"
)

// MergeTitle is the title of the commit a merge records.
func MergeTitle(source, target string) string {
	return fmt.Sprintf("Merge branch '%s' into '%s'", source, target)
}

// Merge copies the latest commit of source over the working tree and
// records the result on the current branch. There is no conflict
// detection: every entry of the source commit replaces its counterpart.
// A merge commit is always created; overwrite failures are returned as a
// *errors.PartialCopyError next to it and are not rolled back.
func (r *Repository) Merge(source string) (*snapshot.Commit, error) {
	target := r.state.CurrentBranch
	ix := r.index()

	switch {
	case !ix.Exists(source):
		return nil, r.fail(sgErrors.Wrapf(sgErrors.ErrNotFound, "branch '%s'", source), "Failed to merge")
	case source == target:
		err := sgErrors.Wrapf(sgErrors.ErrInvalidOperation, "cannot merge branch '%s' into itself", source)
		return nil, r.fail(err, "Failed to merge")
	}

	head, err := r.latest(source)
	if err != nil {
		return nil, r.fail(err, "Failed to merge branch '%s'", source)
	}

	overwriteErr := r.overwrite("merge "+source, head)

	commit, err := r.record(MergeTitle(source, target), fmt.Sprintf("Merged commit %s", head.ID))
	if commit == nil {
		return nil, errors.Join(overwriteErr, err)
	}
	eventlog.Logf(r.log, "Merged branch '%s' (%s) into '%s'", source, head.ID, target)
	return commit, errors.Join(overwriteErr, err)
}

// overwrite copies every entry of commit onto the working tree. Existing
// directories are replaced wholesale. Failures are logged per entry.
func (r *Repository) overwrite(op string, commit *snapshot.Commit) error {
	names, err := workspace.Entries(commit.Dir, workspace.Exclude(snapshot.InfoFile, config.ControlDir))
	if err != nil {
		return r.fail(err, "Failed to read commit %s", commit.ID)
	}

	failures := workspace.Overwrite(commit.Dir, r.root, names, r.filter)
	for _, f := range failures {
		eventlog.Logf(r.log, "%s: %v", op, f)
	}
	return sgErrors.NewPartialCopyError(op, failures)
}
