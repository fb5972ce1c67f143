// Package diffmerge computes line-level differences between two commit directories.
//
// The walk is driven by the old commit only:
// - Every file of the old commit that still exists in the new one is diffed
// - Every file missing from the new commit produces a "removed" notice
// - Files that exist only in the new commit are not reported
//
// Output is a lazy sequence of unified-diff lines, produced file by file.
package diffmerge

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/javanhut/simplegit/internal/workspace"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// Differ compares commit directories.
type Differ struct {
	Context int
	Filter  workspace.Filter
	// RootSkip names entries at the commit root that are not tracked content.
	RootSkip []string
}

// NewDiffer creates a Differ that ignores filtered names at every level and
// rootSkip names at the commit root.
func NewDiffer(context int, filter workspace.Filter, rootSkip ...string) *Differ {
	return &Differ{Context: context, Filter: filter, RootSkip: rootSkip}
}

// FileDiff is the comparison of one file of the old commit.
type FileDiff struct {
	Path    string
	Removed bool
	Lines   []string
}

var errStop = errors.New("stop")

// RemovedNotice is the line emitted for a file absent from the new commit.
func RemovedNotice(rel, newLabel string) string {
	return fmt.Sprintf("File %s removed in %s", rel, newLabel)
}

// Diff yields the unified diff of oldDir against newDir line by line,
// without trailing newlines. An error is yielded for an entry that cannot
// be read; iteration continues with the next entry unless the consumer stops.
func (d *Differ) Diff(oldDir, newDir, oldLabel, newLabel string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := d.walk(oldDir, newDir, oldLabel, newLabel, func(fd FileDiff, err error) bool {
			if err != nil {
				return yield("", err)
			}
			if fd.Removed {
				return yield(RemovedNotice(fd.Path, newLabel), nil)
			}
			for _, line := range fd.Lines {
				if !yield(line, nil) {
					return false
				}
			}
			return true
		})
		if err != nil {
			yield("", err)
		}
	}
}

// Summary lists the files a diff touches.
type Summary struct {
	Changed []string
	Removed []string
}

// Stat compares the two commits and returns only the summary. Unreadable
// entries are skipped and reported together in the returned error.
func (d *Differ) Stat(oldDir, newDir, oldLabel, newLabel string) (*Summary, error) {
	st := &Summary{}
	var errs []error
	err := d.walk(oldDir, newDir, oldLabel, newLabel, func(fd FileDiff, err error) bool {
		switch {
		case err != nil:
			errs = append(errs, err)
		case fd.Removed:
			st.Removed = append(st.Removed, fd.Path)
		case len(fd.Lines) > 0:
			st.Changed = append(st.Changed, fd.Path)
		}
		return true
	})
	errs = append(errs, err)
	return st, errors.Join(errs...)
}

func (d *Differ) skipAtRoot(name string) bool {
	for _, s := range d.RootSkip {
		if s == name {
			return true
		}
	}
	return false
}

// walk visits every file of oldDir in lexical order and hands its
// comparison to fn until fn returns false.
func (d *Differ) walk(oldDir, newDir, oldLabel, newLabel string, fn func(FileDiff, error) bool) error {
	if _, err := os.Stat(oldDir); err != nil {
		return fmt.Errorf("open commit %s: %w", oldDir, err)
	}

	err := filepath.WalkDir(oldDir, func(path string, entry fs.DirEntry, err error) error {
		if path == oldDir {
			return err
		}
		rel, relErr := filepath.Rel(oldDir, path)
		if relErr != nil {
			return relErr
		}
		if err != nil {
			if !fn(FileDiff{Path: rel}, fmt.Errorf("read %s: %w", rel, err)) {
				return errStop
			}
			return nil
		}

		name := entry.Name()
		if d.Filter != nil && d.Filter(name) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Dir(rel) == "." && d.skipAtRoot(name) {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		fd, err := d.compare(path, filepath.Join(newDir, rel), filepath.ToSlash(rel), oldLabel, newLabel)
		if !fn(fd, err) {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (d *Differ) compare(oldPath, newPath, rel, oldLabel, newLabel string) (FileDiff, error) {
	fd := FileDiff{Path: rel}

	newInfo, err := os.Lstat(newPath)
	if os.IsNotExist(err) || (err == nil && newInfo.IsDir()) {
		fd.Removed = true
		return fd, nil
	}
	if err != nil {
		return fd, err
	}

	a, err := readText(oldPath)
	if err != nil {
		return fd, err
	}
	b, err := readText(newPath)
	if err != nil {
		return fd, err
	}
	if a == b {
		return fd, nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: oldLabel + "/" + rel,
		ToFile:   newLabel + "/" + rel,
		Context:  d.Context,
	})
	if err != nil {
		return fd, fmt.Errorf("diff %s: %w", rel, err)
	}
	if text != "" {
		fd.Lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}
	return fd, nil
}

// readText returns a file as text with undecodable bytes dropped. A
// symbolic link reads as its target.
func readText(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		return "-> " + target, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
