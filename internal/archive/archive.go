// Package archive exports commit directories to backup locations.
//
// Each commit becomes <location>/<commit dir>.tar.zst, a zstd compressed
// tar stream, next to a <name>.b3 sidecar holding the BLAKE3-256 digest of
// the compressed bytes in hex. Verify recomputes the digest and decodes the
// whole stream.
package archive

import (
	"archive/tar"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/javanhut/simplegit/internal/workspace"
)

const (
	Ext    = ".tar.zst"
	SumExt = ".b3"
)

// ErrChecksum is returned when an archive does not match its sidecar.
var ErrChecksum = errors.New("archive checksum mismatch")

// Result describes a written archive.
type Result struct {
	Path  string
	Sum   string
	Size  int64
	Files int
}

// Path returns the archive path for a commit directory name.
func Path(location, name string) string {
	return filepath.Join(location, name+Ext)
}

func newHasher() hash.Hash { return blake3.New(32, nil) }

// Write archives srcDir into location as name.tar.zst. The archive is
// written to a temporary file and renamed into place, so an existing
// archive is replaced only by a complete one.
func Write(srcDir, location, name string, filter workspace.Filter) (*Result, error) {
	if err := os.MkdirAll(location, 0755); err != nil {
		return nil, fmt.Errorf("create backup location %s: %w", location, err)
	}

	tmp, err := os.CreateTemp(location, "."+name+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create archive in %s: %w", location, err)
	}
	defer os.Remove(tmp.Name())

	h := newHasher()
	counter := &countingWriter{w: io.MultiWriter(tmp, h)}
	files, err := writeTar(counter, srcDir, filter)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", srcDir, err)
	}

	dst := Path(location, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, fmt.Errorf("install archive %s: %w", dst, err)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if err := os.WriteFile(dst+SumExt, []byte(sum+"  "+filepath.Base(dst)+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write checksum %s: %w", dst+SumExt, err)
	}
	return &Result{Path: dst, Sum: sum, Size: counter.n, Files: files}, nil
}

func writeTar(w io.Writer, srcDir string, filter workspace.Filter) (int, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(zw)

	files := 0
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		if filter != nil && filter(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := addEntry(tw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})

	errs := []error{walkErr, tw.Close(), zw.Close()}
	return files, errors.Join(errs...)
}

func addEntry(tw *tar.Writer, path, name string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}
	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("header %s: %w", name, err)
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}

// Verify checks the archive at path against its sidecar and decodes every
// entry. It returns the number of entries read.
func Verify(path string) (int, error) {
	want, err := readSum(path + SumExt)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	h := newHasher()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("read archive %s: %w", path, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return 0, fmt.Errorf("%s: %w (want %s, got %s)", path, ErrChecksum, want, got)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("open zstd stream %s: %w", path, err)
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	entries := 0
	for {
		_, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("decode %s: %w", path, err)
		}
		if _, err := io.Copy(io.Discard, tr); err != nil {
			return entries, fmt.Errorf("decode %s: %w", path, err)
		}
		entries++
	}
}

func readSum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read checksum: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("checksum file %s is empty", path)
	}
	return fields[0], nil
}

// List returns the archive paths in location, sorted.
func List(location string) ([]string, error) {
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("list backup location %s: %w", location, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), Ext) {
			paths = append(paths, filepath.Join(location, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
