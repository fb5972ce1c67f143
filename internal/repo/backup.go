package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/javanhut/simplegit/internal/archive"
	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/refs"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// AddBackupLocation registers a directory that receives commit archives.
// Paths are stored absolute.
func (r *Repository) AddBackupLocation(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve backup location %s: %w", path, err)
	}
	if err := r.mutate(func(_ *refs.Index, st *config.State) error {
		if slices.Contains(st.BackupLocations, abs) {
			return sgErrors.Wrapf(sgErrors.ErrAlreadyExists, "backup location %s", abs)
		}
		st.BackupLocations = append(st.BackupLocations, abs)
		return nil
	}); err != nil {
		return "", r.fail(err, "Failed to add backup location %s", abs)
	}
	eventlog.Logf(r.log, "Added backup location %s", abs)
	return abs, nil
}

// RemoveBackupLocation unregisters a backup directory. Archives already
// written there are left alone.
func (r *Repository) RemoveBackupLocation(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve backup location %s: %w", path, err)
	}
	if err := r.mutate(func(_ *refs.Index, st *config.State) error {
		i := slices.Index(st.BackupLocations, abs)
		if i < 0 {
			return sgErrors.Wrapf(sgErrors.ErrNotFound, "backup location %s", abs)
		}
		st.BackupLocations = slices.Delete(st.BackupLocations, i, i+1)
		return nil
	}); err != nil {
		return r.fail(err, "Failed to remove backup location %s", abs)
	}
	eventlog.Logf(r.log, "Removed backup location %s", abs)
	return nil
}

// BackupLocations returns the registered backup directories.
func (r *Repository) BackupLocations() []string {
	return slices.Clone(r.state.BackupLocations)
}

// BackupResult is the outcome of one automatic backup attempt.
type BackupResult struct {
	Commit   *snapshot.Commit // nil when nothing changed
	Archives []*archive.Result
}

// Backup performs one automatic backup attempt: reload the state, commit
// with the configured title when the tree changed, then push the new
// commit to every backup location if pushing is enabled.
func (r *Repository) Backup(ctx context.Context) (*BackupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Reload(); err != nil {
		return nil, r.fail(err, "Backup aborted")
	}

	desc := "Automatic backup at " + r.now().Format("2006-01-02 15:04:05")
	commit, err := r.Commit(r.settings.BackupTitle, desc)
	if sgErrors.Is(err, sgErrors.ErrNoChanges) {
		eventlog.Logf(r.log, "Backup: no changes on branch '%s'", r.state.CurrentBranch)
		return &BackupResult{}, nil
	}
	if commit == nil {
		return nil, err
	}

	res := &BackupResult{Commit: commit}
	if !r.settings.BackupPush || len(r.state.BackupLocations) == 0 {
		return res, err
	}
	archives, pushErr := r.push(commit)
	res.Archives = archives
	return res, errors.Join(err, pushErr)
}

// Push archives a commit into every backup location. An empty ref means
// the head of the current branch.
func (r *Repository) Push(ref string) ([]*archive.Result, error) {
	if len(r.state.BackupLocations) == 0 {
		return nil, sgErrors.Wrap(sgErrors.ErrInvalidOperation, "no backup locations configured")
	}

	var commit *snapshot.Commit
	var err error
	if ref == "" {
		commit, err = r.latest(r.state.CurrentBranch)
	} else {
		commit, err = r.ResolveRef(ref)
	}
	if err != nil {
		return nil, r.fail(err, "Failed to push %s", ref)
	}
	return r.push(commit)
}

// push writes one archive per location and keeps going after a failure.
func (r *Repository) push(commit *snapshot.Commit) ([]*archive.Result, error) {
	name := filepath.Base(commit.Dir)
	var results []*archive.Result
	var errs []error
	for _, loc := range r.state.BackupLocations {
		res, err := archive.Write(commit.Dir, loc, name, nil)
		if err != nil {
			errs = append(errs, r.fail(err, "Failed to push commit %s to %s", commit.ID, loc))
			continue
		}
		eventlog.Logf(r.log, "Pushed commit %s to %s (blake3 %s)", commit.ID, res.Path, res.Sum)
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// ArchiveCheck is the verification result of one backup archive.
type ArchiveCheck struct {
	Path    string
	Entries int
	Err     error
}

// VerifyBackups checks every archive in every backup location. Unreadable
// locations are returned as errors; bad archives are reported per check.
func (r *Repository) VerifyBackups() ([]ArchiveCheck, error) {
	var checks []ArchiveCheck
	var errs []error
	for _, loc := range r.state.BackupLocations {
		paths, err := archive.List(loc)
		if err != nil {
			errs = append(errs, r.fail(err, "Failed to verify backups"))
			continue
		}
		for _, p := range paths {
			n, err := archive.Verify(p)
			if err != nil {
				eventlog.Logf(r.log, "Backup archive %s failed verification: %v", p, err)
			}
			checks = append(checks, ArchiveCheck{Path: p, Entries: n, Err: err})
		}
	}
	return checks, errors.Join(errs...)
}
