package repo

import (
	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/refs"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// CreateBranch registers an empty branch.
func (r *Repository) CreateBranch(name string) error {
	if err := r.mutate(func(ix *refs.Index, _ *config.State) error {
		return ix.CreateBranch(name)
	}); err != nil {
		return r.fail(err, "Failed to create branch '%s'", name)
	}
	eventlog.Logf(r.log, "Created branch '%s'", name)
	return nil
}

// SwitchBranch changes the current branch without touching the working tree.
func (r *Repository) SwitchBranch(name string) error {
	if err := r.mutate(func(ix *refs.Index, _ *config.State) error {
		return ix.SwitchBranch(name)
	}); err != nil {
		return r.fail(err, "Failed to switch to branch '%s'", name)
	}
	eventlog.Logf(r.log, "Switched to branch '%s'", name)
	return nil
}

// DeleteBranch unregisters a branch; its commit directories are kept.
func (r *Repository) DeleteBranch(name string) error {
	if err := r.mutate(func(ix *refs.Index, _ *config.State) error {
		return ix.DeleteBranch(name)
	}); err != nil {
		return r.fail(err, "Failed to delete branch '%s'", name)
	}
	eventlog.Logf(r.log, "Deleted branch '%s'", name)
	return nil
}

// Branches lists every branch sorted by name.
func (r *Repository) Branches() []refs.Branch {
	return r.index().Branches()
}

// CreateTag binds name to the commit ref resolves to. Names are write-once
// and checked before the commit is resolved.
func (r *Repository) CreateTag(ref, name string) (*snapshot.Commit, error) {
	ix := r.index()
	if ix.HasTag(name) {
		err := sgErrors.Wrapf(sgErrors.ErrAlreadyExists, "tag '%s'", name)
		return nil, r.fail(err, "Failed to create tag '%s'", name)
	}
	if err := refs.ValidateName(name); err != nil {
		return nil, r.fail(err, "Failed to create tag '%s'", name)
	}

	commit, err := r.ResolveRef(ref)
	if err != nil {
		return nil, r.fail(err, "Failed to create tag '%s'", name)
	}

	if err := r.mutate(func(ix *refs.Index, _ *config.State) error {
		return ix.CreateTag(name, commit.ID)
	}); err != nil {
		return nil, r.fail(err, "Failed to create tag '%s'", name)
	}
	eventlog.Logf(r.log, "Tagged commit %s as '%s'", commit.ID, name)
	return commit, nil
}

// Tags lists every tag sorted by name.
func (r *Repository) Tags() []refs.Tag {
	return r.index().Tags()
}
