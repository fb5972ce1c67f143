// Package workspace copies working-tree entries into and out of commit directories.
//
// This package provides:
// - Top-level entry listing with a name filter (used to exclude the control directory)
// - Recursive copies that keep symbolic links as links and preserve modes and mtimes
// - Best-effort entry loops that collect per-entry failures instead of aborting
// - Overwrite semantics for merge and restore: directories are replaced wholesale
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
)

// Filter reports whether a name must be skipped. It is applied at every
// directory level, not only at the root.
type Filter func(name string) bool

// Exclude returns a Filter that skips the given names.
func Exclude(names ...string) Filter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

func (f Filter) skip(name string) bool {
	return f != nil && f(name)
}

// Entries lists the names directly under root, sorted, without the filtered ones.
func Entries(root string, filter Filter) ([]string, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if filter.skip(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CopyEntries copies each named entry from srcRoot into dstRoot. A failing
// entry is recorded and the loop moves on to the next one.
func CopyEntries(srcRoot, dstRoot string, names []string, filter Filter) []sgErrors.CopyFailure {
	var failures []sgErrors.CopyFailure
	for _, name := range names {
		src := filepath.Join(srcRoot, name)
		dst := filepath.Join(dstRoot, name)
		if err := Copy(src, dst, filter); err != nil {
			failures = append(failures, sgErrors.CopyFailure{Path: src, Err: err})
		}
	}
	return failures
}

// Overwrite copies each named entry from srcRoot onto dstRoot, replacing
// what is there. An existing destination directory is deleted before the
// source is copied in; entries of dstRoot not named are left alone.
func Overwrite(srcRoot, dstRoot string, names []string, filter Filter) []sgErrors.CopyFailure {
	var failures []sgErrors.CopyFailure
	for _, name := range names {
		src := filepath.Join(srcRoot, name)
		dst := filepath.Join(dstRoot, name)
		if err := replace(src, dst, filter); err != nil {
			failures = append(failures, sgErrors.CopyFailure{Path: dst, Err: err})
		}
	}
	return failures
}

func replace(src, dst string, filter Filter) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return err
	}
	dstInfo, err := os.Lstat(dst)
	switch {
	case err == nil:
		// A file over a file is copied in place; anything else is removed first
		// so directories are replaced wholesale and links are never written through.
		if srcInfo.Mode().IsRegular() && dstInfo.Mode().IsRegular() {
			break
		}
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("remove %s: %w", dst, err)
		}
	case !os.IsNotExist(err):
		return err
	}
	return Copy(src, dst, filter)
}

// Copy copies src to dst recursively. Symbolic links are recreated, not
// followed. For directories every child is attempted and the failures are
// joined.
func Copy(src, dst string, filter Filter) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case mode.IsDir():
		return copyDir(src, dst, info, filter)
	case mode.IsRegular():
		return copyFile(src, dst, info)
	default:
		return fmt.Errorf("unsupported file type %s", mode.Type())
	}
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyDir(src, dst string, info os.FileInfo, filter Filter) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	children, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	var errs []error
	for _, child := range children {
		if filter.skip(child.Name()) {
			continue
		}
		if err := Copy(filepath.Join(src, child.Name()), filepath.Join(dst, child.Name()), filter); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Join(src, child.Name()), err))
		}
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		errs = append(errs, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
