package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
)

const (
	// ControlDir is the repository's private directory at the working-tree root.
	ControlDir = ".simplegit"
	// ConfigFile holds the repository State inside ControlDir.
	ConfigFile = "config.json"
	// LogsDir holds one directory per commit.
	LogsDir = "logs"
	// EventLogFile is the append-only event log.
	EventLogFile = "simplegit.log"
	// DefaultBranch always exists after initialization.
	DefaultBranch = "main"
)

// State is the single persisted repository record. It is the source of
// truth for branch and tag membership.
type State struct {
	LogsDirectory   string              `json:"logs_directory"`
	BackupLocations []string            `json:"backup_locations"`
	CurrentBranch   string              `json:"current_branch"`
	Branches        map[string][]string `json:"branches"`
	Tags            map[string]string   `json:"tags"`
}

// NewState returns the state written by init.
func NewState(logsDir string) *State {
	return &State{
		LogsDirectory:   logsDir,
		BackupLocations: []string{},
		CurrentBranch:   DefaultBranch,
		Branches:        map[string][]string{DefaultBranch: {}},
		Tags:            map[string]string{},
	}
}

// StatePath returns the config.json path for a control directory.
func StatePath(controlDir string) string {
	return filepath.Join(controlDir, ConfigFile)
}

// LoadState reads config.json fully. A missing file is ErrNotInitialized.
func LoadState(controlDir string) (*State, error) {
	path := StatePath(controlDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sgErrors.Wrapf(sgErrors.ErrNotInitialized, "configuration not found at %s", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	st.normalize(controlDir)
	return &st, nil
}

// normalize fills fields an older or hand-edited config may lack.
func (s *State) normalize(controlDir string) {
	if s.LogsDirectory == "" {
		s.LogsDirectory = filepath.Join(controlDir, LogsDir)
	}
	if s.BackupLocations == nil {
		s.BackupLocations = []string{}
	}
	if s.Branches == nil {
		s.Branches = map[string][]string{}
	}
	if _, ok := s.Branches[DefaultBranch]; !ok {
		s.Branches[DefaultBranch] = []string{}
	}
	for name, ids := range s.Branches {
		if ids == nil {
			s.Branches[name] = []string{}
		}
	}
	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
	if s.CurrentBranch == "" {
		s.CurrentBranch = DefaultBranch
	}
}

// SaveState rewrites config.json fully. The new content is written to a
// temporary file and renamed over the old one.
func SaveState(controlDir string, s *State) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return WriteFileAtomic(StatePath(controlDir), data)
}

// Update performs one read-modify-write cycle: load the full state, apply
// fn, and write the full state back. Nothing is written when fn fails.
func Update(controlDir string, fn func(*State) error) (*State, error) {
	st, err := LoadState(controlDir)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := SaveState(controlDir, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := &State{
		LogsDirectory:   s.LogsDirectory,
		BackupLocations: append([]string{}, s.BackupLocations...),
		CurrentBranch:   s.CurrentBranch,
		Branches:        make(map[string][]string, len(s.Branches)),
		Tags:            make(map[string]string, len(s.Tags)),
	}
	for name, ids := range s.Branches {
		c.Branches[name] = append([]string{}, ids...)
	}
	for name, id := range s.Tags {
		c.Tags[name] = id
	}
	return c
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
