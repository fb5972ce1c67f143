package repo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/javanhut/simplegit/internal/changes"
	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/refs"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// HasChanges reports whether the working tree differs from the latest
// commit of the current branch. A branch without commits always has changes.
func (r *Repository) HasChanges() (bool, error) {
	head, err := r.latest(r.state.CurrentBranch)
	if sgErrors.Is(err, sgErrors.ErrNoCommits) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	changed, err := r.detector.HasChanges(head.Dir)
	if err != nil {
		return false, fmt.Errorf("compare with %s: %w", head.ID, err)
	}
	return changed, nil
}

// StatusReport lists the differences between the working tree and the
// current branch head.
type StatusReport struct {
	Branch  string
	Head    *snapshot.Commit // nil when the branch has no commits
	Changes []changes.Change
}

// Status compares every top-level entry with the current branch head.
func (r *Repository) Status() (*StatusReport, error) {
	report := &StatusReport{Branch: r.state.CurrentBranch}

	dir := ""
	head, err := r.latest(report.Branch)
	switch {
	case err == nil:
		report.Head = head
		dir = head.Dir
	case !sgErrors.Is(err, sgErrors.ErrNoCommits):
		return nil, err
	}

	list, err := r.detector.Status(dir)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	report.Changes = list
	return report, nil
}

// Commit snapshots the working tree onto the current branch. When nothing
// changed since the branch head, no commit is created and ErrNoChanges is
// returned. Entry copy failures still produce a commit, returned together
// with a *errors.PartialCopyError.
func (r *Repository) Commit(title, description string) (*snapshot.Commit, error) {
	if strings.TrimSpace(title) == "" {
		return nil, sgErrors.Wrap(sgErrors.ErrInvalidOperation, "commit title is empty")
	}

	changed, err := r.HasChanges()
	if err != nil {
		return nil, r.fail(err, "Failed to check for changes")
	}
	if !changed {
		return nil, sgErrors.Wrapf(sgErrors.ErrNoChanges, "branch '%s'", r.state.CurrentBranch)
	}
	return r.record(title, description)
}

// record creates a commit unconditionally and appends it to the current branch.
func (r *Repository) record(title, description string) (*snapshot.Commit, error) {
	branch := r.state.CurrentBranch

	after, err := r.index().Latest(branch)
	if err != nil && !sgErrors.Is(err, sgErrors.ErrNoCommits) {
		return nil, err
	}

	commit, copyErr := r.snapshots.Create(title, description, branch, after)
	if commit == nil {
		return nil, r.fail(copyErr, "Failed to create commit '%s'", title)
	}

	if err := r.mutate(func(ix *refs.Index, _ *config.State) error {
		return ix.AppendCommit(branch, commit.ID)
	}); err != nil {
		return nil, r.fail(err, "Failed to record commit %s on branch '%s'", commit.ID, branch)
	}

	eventlog.Logf(r.log, "Committed changes as '%s' (%s) on branch '%s'", title, commit.ID, branch)
	return commit, copyErr
}

// Log returns the commits of branch, newest first. An empty name means the
// current branch. Metadata comes from the catalog when possible and from
// commit_info.json otherwise.
func (r *Repository) Log(branch string) ([]*snapshot.Commit, error) {
	if branch == "" {
		branch = r.state.CurrentBranch
	}
	ids, err := r.index().Commits(branch)
	if err != nil {
		return nil, err
	}

	commits := make([]*snapshot.Commit, 0, len(ids))
	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		c, err := r.lookup(ids[i])
		if err != nil {
			errs = append(errs, r.fail(err, "Commit %s of branch '%s' is unreadable", ids[i], branch))
			continue
		}
		commits = append(commits, c)
	}
	return commits, errors.Join(errs...)
}

// LogAll returns every commit directory on disk, newest first, including
// commits no branch references.
func (r *Repository) LogAll() ([]*snapshot.Commit, error) {
	all, err := r.snapshots.List()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func (r *Repository) lookup(id string) (*snapshot.Commit, error) {
	if info, err := r.catalog.GetCommit(id); err == nil {
		return &snapshot.Commit{
			Info: info,
			Dir:  filepath.Join(r.state.LogsDirectory, snapshot.DirName(info.ID, info.Title)),
		}, nil
	}

	c, err := r.snapshots.Load(id)
	if err != nil {
		return nil, err
	}
	if err := r.catalog.PutCommit(c.Info); err != nil {
		eventlog.Logf(r.log, "Failed to catalog commit %s: %v", id, err)
	}
	return c, nil
}
