// Package repo ties the SimpleGit components together behind one
// Repository handle. Every command-line operation is a method here.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javanhut/simplegit/internal/changes"
	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/refs"
	"github.com/javanhut/simplegit/internal/snapshot"
	"github.com/javanhut/simplegit/internal/store"
	"github.com/javanhut/simplegit/internal/workspace"
)

// Repository is an open SimpleGit repository.
type Repository struct {
	root       string
	controlDir string

	state    *config.State
	settings *config.Settings

	catalog *store.DB
	logFile *eventlog.FileLogger
	log     eventlog.Logger

	filter    workspace.Filter
	snapshots *snapshot.Store
	detector  *changes.Detector
	now       func() time.Time
}

// ControlDirOf returns the control directory for a working tree root.
func ControlDirOf(root string) string {
	return filepath.Join(root, config.ControlDir)
}

// Init creates a repository at root and opens it. An initialized
// repository is left untouched and reported as ErrAlreadyExists.
func Init(root string) (*Repository, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repository root: %w", err)
	}
	controlDir := ControlDirOf(root)
	if _, err := os.Stat(config.StatePath(controlDir)); err == nil {
		return nil, sgErrors.Wrapf(sgErrors.ErrAlreadyExists, "repository in %s", controlDir)
	}

	logsDir := filepath.Join(controlDir, config.LogsDir)
	for _, dir := range []string{logsDir, filepath.Join(controlDir, refs.BranchesDir), filepath.Join(controlDir, refs.TagsDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	st := config.NewState(logsDir)
	if err := config.SaveState(controlDir, st); err != nil {
		return nil, err
	}
	if err := refs.WriteCache(controlDir, st); err != nil {
		return nil, err
	}

	r, err := Open(root)
	if err != nil {
		return nil, err
	}
	eventlog.Logf(r.log, "Initialized empty SimpleGit repository in %s", controlDir)
	return r, nil
}

// Open loads the repository at root. A missing configuration is
// ErrNotInitialized. The commit catalog is held open until Close.
func Open(root string) (*Repository, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repository root: %w", err)
	}
	controlDir := ControlDirOf(root)

	st, err := config.LoadState(controlDir)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(controlDir)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		root:       root,
		controlDir: controlDir,
		state:      st,
		settings:   settings,
		log:        eventlog.Nop,
		filter:     workspace.Exclude(config.ControlDir),
		now:        time.Now,
	}

	// The event log is best-effort; an unwritable file never blocks a command.
	if lf, err := eventlog.Open(filepath.Join(controlDir, config.EventLogFile)); err == nil {
		r.logFile = lf
		r.log = lf
	}

	catalog, err := store.Open(filepath.Join(controlDir, store.CatalogFile))
	if err != nil {
		r.logFile.Close()
		return nil, err
	}
	r.catalog = catalog

	r.wire()
	return r, nil
}

// wire rebuilds the components that depend on the loaded state.
func (r *Repository) wire() {
	r.snapshots = snapshot.NewStore(r.root, r.state.LogsDirectory, r.filter)
	r.snapshots.Recorder = r.catalog
	r.snapshots.Log = r.log
	r.snapshots.Now = r.now
	r.detector = changes.NewDetector(r.root, r.filter, snapshot.InfoFile)
}

// Close releases the catalog lock and the event log.
func (r *Repository) Close() error {
	var errs []error
	if r.catalog != nil {
		errs = append(errs, r.catalog.Close())
	}
	errs = append(errs, r.logFile.Close())
	return errors.Join(errs...)
}

// SetClock replaces the time source used for commit ids.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
	r.snapshots.Now = now
}

// Root returns the working tree root.
func (r *Repository) Root() string { return r.root }

// ControlDir returns the .simplegit directory.
func (r *Repository) ControlDir() string { return r.controlDir }

// CurrentBranch returns the checked-out branch name.
func (r *Repository) CurrentBranch() string { return r.state.CurrentBranch }

// State returns a copy of the loaded repository state.
func (r *Repository) State() *config.State { return r.state.Clone() }

// Settings returns the effective tool settings.
func (r *Repository) Settings() config.Settings { return *r.settings }

// EventLog returns the logger that writes simplegit.log.
func (r *Repository) EventLog() eventlog.Logger { return r.log }

// Reload rereads config.json and the settings from disk.
func (r *Repository) Reload() error {
	st, err := config.LoadState(r.controlDir)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(r.controlDir)
	if err != nil {
		return err
	}
	r.state = st
	r.settings = settings
	r.wire()
	return nil
}

// mutate runs fn against a freshly loaded state and persists the result.
// The branch and tag caches are regenerated afterwards; a cache failure
// is logged since config.json stays authoritative.
func (r *Repository) mutate(fn func(ix *refs.Index, st *config.State) error) error {
	st, err := config.Update(r.controlDir, func(st *config.State) error {
		return fn(refs.New(st), st)
	})
	if err != nil {
		return err
	}
	r.state = st
	if err := refs.WriteCache(r.controlDir, st); err != nil {
		eventlog.Logf(r.log, "Failed to refresh branch and tag caches: %v", err)
	}
	return nil
}

// fail logs err with context and returns it unchanged.
func (r *Repository) fail(err error, format string, args ...any) error {
	eventlog.Logf(r.log, "%s: %v", fmt.Sprintf(format, args...), err)
	return err
}

func (r *Repository) index() *refs.Index { return refs.New(r.state) }

// ResolveRef finds a commit by tag name or by id prefix, in that order.
func (r *Repository) ResolveRef(ref string) (*snapshot.Commit, error) {
	if id, err := r.index().Tag(ref); err == nil {
		c, err := r.snapshots.Load(id)
		if err != nil {
			return nil, fmt.Errorf("tag '%s': %w", ref, err)
		}
		return c, nil
	}
	return r.snapshots.Load(ref)
}

// latest returns the newest commit of branch.
func (r *Repository) latest(branch string) (*snapshot.Commit, error) {
	id, err := r.index().Latest(branch)
	if err != nil {
		return nil, err
	}
	c, err := r.snapshots.Load(id)
	if err != nil {
		return nil, fmt.Errorf("branch '%s' head: %w", branch, err)
	}
	return c, nil
}
