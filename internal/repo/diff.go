package repo

import (
	"iter"

	"github.com/javanhut/simplegit/internal/diffmerge"
	"github.com/javanhut/simplegit/internal/snapshot"
)

func (r *Repository) differ() *diffmerge.Differ {
	return diffmerge.NewDiffer(r.settings.DiffContext, r.filter, snapshot.InfoFile)
}

func (r *Repository) resolvePair(a, b string) (*snapshot.Commit, *snapshot.Commit, error) {
	ca, err := r.ResolveRef(a)
	if err != nil {
		return nil, nil, r.fail(err, "Failed to resolve commit %s", a)
	}
	cb, err := r.ResolveRef(b)
	if err != nil {
		return nil, nil, r.fail(err, "Failed to resolve commit %s", b)
	}
	return ca, cb, nil
}

// Diff resolves both references and returns the lazy line diff of a against b.
func (r *Repository) Diff(a, b string) (iter.Seq2[string, error], error) {
	ca, cb, err := r.resolvePair(a, b)
	if err != nil {
		return nil, err
	}
	return r.differ().Diff(ca.Dir, cb.Dir, ca.ID, cb.ID), nil
}

// DiffStat summarizes the diff of a against b.
func (r *Repository) DiffStat(a, b string) (*diffmerge.Summary, error) {
	ca, cb, err := r.resolvePair(a, b)
	if err != nil {
		return nil, err
	}
	return r.differ().Stat(ca.Dir, cb.Dir, ca.ID, cb.ID)
}
