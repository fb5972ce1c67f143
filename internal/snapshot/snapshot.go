// Package snapshot creates, enumerates and resolves commit directories under the logs root.
//
// A commit is a directory named <id>_<title> holding a full copy of the
// working tree plus a commit_info.json metadata record. The id is the
// creation time formatted as YYYYMMDDHHMMSS.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/eventlog"
	"github.com/javanhut/simplegit/internal/workspace"
)

const (
	// InfoFile is the metadata record written into every commit directory.
	InfoFile = "commit_info.json"
	// IDLayout formats commit ids and timestamps.
	IDLayout = "20060102150405"
)

// Info is the content of commit_info.json.
type Info struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Branch      string `json:"branch"`
}

// Time parses the timestamp in the local time zone.
func (i Info) Time() (time.Time, error) {
	return time.ParseInLocation(IDLayout, i.Timestamp, time.Local)
}

// Commit is a resolved commit directory and its metadata.
type Commit struct {
	Info
	Dir string
}

// Recorder receives the metadata of every created commit.
type Recorder interface {
	PutCommit(info Info) error
}

// Store owns the physical bytes of every commit.
type Store struct {
	WorkDir  string
	LogsDir  string
	Filter   workspace.Filter
	Recorder Recorder
	Log      eventlog.Logger
	Now      func() time.Time
}

// NewStore returns a Store copying from workDir into logsDir. The filter
// excludes the control directory at every level.
func NewStore(workDir, logsDir string, filter workspace.Filter) *Store {
	return &Store{
		WorkDir: workDir,
		LogsDir: logsDir,
		Filter:  filter,
		Log:     eventlog.Nop,
		Now:     time.Now,
	}
}

// DirName builds the directory name for a commit. Spaces and path
// separators in the title become underscores.
func DirName(id, title string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", string(filepath.Separator), "_")
	return id + "_" + r.Replace(title)
}

// idOf extracts the id from a commit directory name.
func idOf(dirName string) string {
	id, _, _ := strings.Cut(dirName, "_")
	return id
}

func (s *Store) logger() eventlog.Logger {
	if s.Log == nil {
		return eventlog.Nop
	}
	return s.Log
}

// NextID returns the id for a commit created now. The id is advanced one
// second at a time until it is greater than after and not used by any
// existing commit directory.
func (s *Store) NextID(after string) (string, error) {
	now := s.Now()
	t := now.Truncate(time.Second)
	if after != "" {
		last, err := time.ParseInLocation(IDLayout, after, now.Location())
		if err != nil {
			return "", fmt.Errorf("parse previous commit id %s: %w", after, err)
		}
		if !t.After(last) {
			t = last.Add(time.Second)
		}
	}

	taken, err := s.ids()
	if err != nil {
		return "", err
	}
	for {
		id := t.Format(IDLayout)
		if _, ok := taken[id]; !ok {
			return id, nil
		}
		t = t.Add(time.Second)
	}
}

func (s *Store) ids() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.LogsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("list logs directory %s: %w", s.LogsDir, err)
	}
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids[idOf(e.Name())] = struct{}{}
		}
	}
	return ids, nil
}

// Create captures the working tree as a new commit. after is the id of the
// branch's latest commit, or empty. Entry copy failures do not abort the
// commit: the commit is returned together with a *errors.PartialCopyError.
// Create does not touch any branch index.
func (s *Store) Create(title, description, branch, after string) (*Commit, error) {
	id, err := s.NextID(after)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("create logs directory %s: %w", s.LogsDir, err)
	}
	dir := filepath.Join(s.LogsDir, DirName(id, title))
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("create commit directory %s: %w", dir, err)
	}

	names, err := workspace.Entries(s.WorkDir, s.Filter)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("scan working tree: %w", err)
	}

	var failures []sgErrors.CopyFailure
	var copyNames []string
	for _, name := range names {
		if name == InfoFile {
			failures = append(failures, sgErrors.CopyFailure{
				Path: filepath.Join(s.WorkDir, name),
				Err:  fmt.Errorf("name is reserved for commit metadata"),
			})
			continue
		}
		copyNames = append(copyNames, name)
	}
	failures = append(failures, workspace.CopyEntries(s.WorkDir, dir, copyNames, s.Filter)...)
	for _, f := range failures {
		eventlog.Logf(s.logger(), "commit %s: %v", id, f)
	}

	info := Info{
		ID:          id,
		Title:       title,
		Timestamp:   id,
		Description: description,
		Branch:      branch,
	}
	if err := writeInfo(dir, info); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	if s.Recorder != nil {
		if err := s.Recorder.PutCommit(info); err != nil {
			eventlog.Logf(s.logger(), "commit %s: catalog update failed: %v", id, err)
		}
	}
	eventlog.Logf(s.logger(), "created commit %s %q on branch %s", id, title, branch)

	return &Commit{Info: info, Dir: dir}, sgErrors.NewPartialCopyError("commit "+id, failures)
}

func writeInfo(dir string, info Info) error {
	data, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal commit info: %w", err)
	}
	path := filepath.Join(dir, InfoFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write commit info %s: %w", path, err)
	}
	return nil
}

// ReadInfo reads the metadata record of a commit directory.
func ReadInfo(dir string) (Info, error) {
	path := filepath.Join(dir, InfoFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("read commit info %s: %w", path, err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("parse commit info %s: %w", path, err)
	}
	if info.ID == "" {
		info.ID = idOf(filepath.Base(dir))
	}
	return info, nil
}

// Resolve finds the commit directory whose name starts with prefix.
// Exactly one directory must match.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", sgErrors.Wrap(sgErrors.ErrNotFound, "empty commit id")
	}

	entries, err := os.ReadDir(s.LogsDir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("list logs directory %s: %w", s.LogsDir, err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", sgErrors.Wrapf(sgErrors.ErrNotFound, "commit %s", prefix)
	case 1:
		return filepath.Join(s.LogsDir, matches[0]), nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%s matches %s: %w", prefix, strings.Join(matches, ", "), sgErrors.ErrAmbiguous)
	}
}

// Load resolves prefix and reads the commit's metadata.
func (s *Store) Load(prefix string) (*Commit, error) {
	dir, err := s.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	info, err := ReadInfo(dir)
	if err != nil {
		return nil, err
	}
	return &Commit{Info: info, Dir: dir}, nil
}

// List returns every readable commit sorted by id. Directories without a
// metadata record are skipped.
func (s *Store) List() ([]*Commit, error) {
	entries, err := os.ReadDir(s.LogsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list logs directory %s: %w", s.LogsDir, err)
	}

	var commits []*Commit
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.LogsDir, e.Name())
		info, err := ReadInfo(dir)
		if err != nil {
			continue
		}
		commits = append(commits, &Commit{Info: info, Dir: dir})
	}
	sort.Slice(commits, func(i, j int) bool { return commits[i].ID < commits[j].ID })
	return commits, nil
}
