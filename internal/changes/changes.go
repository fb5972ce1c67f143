// Package changes decides whether the working tree differs from a commit.
//
// Directories are compared shallowly: only the sets of their immediate
// child names are checked, so editing a file inside an unchanged directory
// listing is not detected. Regular files are compared byte for byte.
package changes

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/javanhut/simplegit/internal/workspace"
)

// Kind is the type of a detected change.
type Kind uint8

const (
	Added Kind = iota + 1
	Modified
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one top-level entry that differs from the commit.
type Change struct {
	Kind Kind
	Path string
}

// Detector compares the working tree at WorkDir with commit directories.
type Detector struct {
	WorkDir string
	Filter  workspace.Filter
	// Metadata names entries at the commit root that are not tracked content.
	Metadata []string
}

// NewDetector returns a Detector for workDir.
func NewDetector(workDir string, filter workspace.Filter, metadata ...string) *Detector {
	return &Detector{WorkDir: workDir, Filter: filter, Metadata: metadata}
}

// HasChanges reports whether the working tree differs from the commit at
// commitDir. It stops at the first difference.
func (d *Detector) HasChanges(commitDir string) (bool, error) {
	found := false
	err := d.walk(commitDir, func(Change) bool {
		found = true
		return false
	})
	return found, err
}

// Status lists every top-level difference from the commit at commitDir.
// An empty commitDir means there is no commit: every entry is Added.
func (d *Detector) Status(commitDir string) ([]Change, error) {
	var changes []Change
	if commitDir == "" {
		names, err := workspace.Entries(d.WorkDir, d.Filter)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			changes = append(changes, Change{Kind: Added, Path: name})
		}
		return changes, nil
	}

	err := d.walk(commitDir, func(c Change) bool {
		changes = append(changes, c)
		return true
	})
	return changes, err
}

// walk reports differences to fn until fn returns false.
func (d *Detector) walk(commitDir string, fn func(Change) bool) error {
	names, err := workspace.Entries(d.WorkDir, d.Filter)
	if err != nil {
		return fmt.Errorf("scan working tree: %w", err)
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}

		changed, err := d.entryChanged(filepath.Join(d.WorkDir, name), filepath.Join(commitDir, name))
		if err != nil {
			return err
		}
		if changed == 0 {
			continue
		}
		if !fn(Change{Kind: changed, Path: name}) {
			return nil
		}
	}

	committed, err := workspace.Entries(commitDir, d.Filter)
	if err != nil {
		return fmt.Errorf("scan commit %s: %w", commitDir, err)
	}
	for _, name := range committed {
		if _, ok := seen[name]; ok || d.isMetadata(name) {
			continue
		}
		if !fn(Change{Kind: Deleted, Path: name}) {
			return nil
		}
	}
	return nil
}

func (d *Detector) isMetadata(name string) bool {
	for _, m := range d.Metadata {
		if m == name {
			return true
		}
	}
	return false
}

// entryChanged compares one working-tree entry with its committed copy.
// It returns zero when they match.
func (d *Detector) entryChanged(current, committed string) (Kind, error) {
	cur, err := os.Lstat(current)
	if err != nil {
		return 0, err
	}
	old, err := os.Lstat(committed)
	if os.IsNotExist(err) {
		return Added, nil
	}
	if err != nil {
		return 0, err
	}
	if cur.Mode().Type() != old.Mode().Type() {
		return Modified, nil
	}

	var same bool
	switch {
	case cur.Mode()&os.ModeSymlink != 0:
		same, err = sameLink(current, committed)
	case cur.IsDir():
		same, err = d.sameChildren(current, committed)
	case cur.Mode().IsRegular():
		same, err = sameContent(current, committed, cur.Size(), old.Size())
	default:
		same = true
	}
	if err != nil || same {
		return 0, err
	}
	return Modified, nil
}

// sameChildren compares only the immediate child name sets of two directories.
func (d *Detector) sameChildren(current, committed string) (bool, error) {
	left, err := workspace.Entries(current, d.Filter)
	if err != nil {
		return false, err
	}
	right, err := workspace.Entries(committed, d.Filter)
	if err != nil {
		return false, err
	}
	if len(left) != len(right) {
		return false, nil
	}
	for i := range left {
		if left[i] != right[i] {
			return false, nil
		}
	}
	return true, nil
}

func sameLink(a, b string) (bool, error) {
	ta, err := os.Readlink(a)
	if err != nil {
		return false, err
	}
	tb, err := os.Readlink(b)
	if err != nil {
		return false, err
	}
	return ta == tb, nil
}

const chunkSize = 32 * 1024

// sameContent compares two regular files by their full contents.
func sameContent(a, b string, sizeA, sizeB int64) (bool, error) {
	if sizeA != sizeB {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	ra := bufio.NewReaderSize(fa, chunkSize)
	rb := bufio.NewReaderSize(fb, chunkSize)
	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	for {
		na, errA := io.ReadFull(ra, bufA)
		nb, errB := io.ReadFull(rb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if doneA || doneB {
			return doneA == doneB, nil
		}
	}
}
