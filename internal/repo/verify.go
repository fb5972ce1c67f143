package repo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/refs"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// Report lists the inconsistencies found by Verify.
type Report struct {
	Problems []string
	// Repaired is set when the catalog and caches were regenerated.
	Repaired bool
}

// OK reports whether no problem was found.
func (rep *Report) OK() bool { return len(rep.Problems) == 0 }

func (rep *Report) addf(format string, args ...any) {
	rep.Problems = append(rep.Problems, fmt.Sprintf(format, args...))
}

// Verify cross-checks config.json against the commit directories, the
// branch and tag caches and the catalog. With repair set, the catalog is
// rebuilt from the commit directories and the caches are rewritten;
// config.json itself is never changed.
func (r *Repository) Verify(repair bool) (*Report, error) {
	rep := &Report{}

	for _, b := range r.Branches() {
		for i, id := range b.Commits {
			if i > 0 && id <= b.Commits[i-1] {
				rep.addf("branch '%s': commit %s is not newer than %s", b.Name, id, b.Commits[i-1])
			}
			if _, err := r.snapshots.Resolve(id); err != nil {
				rep.addf("branch '%s': commit %s: %v", b.Name, id, err)
			}
		}
		cached, err := refs.ReadBranchCache(r.controlDir, b.Name)
		switch {
		case err != nil:
			rep.addf("branch '%s': cache: %v", b.Name, err)
		case !slices.Equal(cached, b.Commits):
			rep.addf("branch '%s': cache lists %d commits, config lists %d", b.Name, len(cached), len(b.Commits))
		}
	}

	for _, t := range r.Tags() {
		if _, err := r.snapshots.Resolve(t.CommitID); err != nil {
			rep.addf("tag '%s': commit %s: %v", t.Name, t.CommitID, err)
		}
		cached, err := refs.ReadTagCache(r.controlDir, t.Name)
		switch {
		case err != nil:
			rep.addf("tag '%s': cache: %v", t.Name, err)
		case cached != t.CommitID:
			rep.addf("tag '%s': cache points to %s, config to %s", t.Name, cached, t.CommitID)
		}
	}

	onDisk, err := r.snapshots.List()
	if err != nil {
		return nil, err
	}
	catalogued, err := r.catalog.Commits()
	if err != nil {
		rep.addf("catalog: %v", err)
	} else {
		checkCatalog(rep, onDisk, catalogued)
	}

	if repair && !rep.OK() {
		infos := make([]snapshot.Info, 0, len(onDisk))
		for _, c := range onDisk {
			infos = append(infos, c.Info)
		}
		if err := r.catalog.Replace(infos); err != nil {
			return rep, r.fail(err, "Failed to rebuild catalog")
		}
		if err := refs.WriteCache(r.controlDir, r.state); err != nil {
			return rep, r.fail(err, "Failed to rewrite branch and tag caches")
		}
		rep.Repaired = true
	}

	eventlog.Logf(r.log, "Verify: %d problems found (repair=%t)", len(rep.Problems), repair)
	return rep, nil
}

func checkCatalog(rep *Report, onDisk []*snapshot.Commit, catalogued []snapshot.Info) {
	byID := make(map[string]snapshot.Info, len(catalogued))
	for _, info := range catalogued {
		byID[info.ID] = info
	}
	for _, c := range onDisk {
		info, ok := byID[c.ID]
		switch {
		case !ok:
			rep.addf("catalog: commit %s is missing", c.ID)
		case info != c.Info:
			rep.addf("catalog: commit %s differs from %s", c.ID, snapshot.InfoFile)
		}
		delete(byID, c.ID)
	}
	for _, id := range slices.Sorted(maps.Keys(byID)) {
		rep.addf("catalog: commit %s has no directory", id)
	}
}
