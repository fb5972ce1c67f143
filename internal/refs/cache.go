package refs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/javanhut/simplegit/internal/config"
)

// Cache directories inside the control directory. Their files mirror the
// branch and tag maps of config.json and are regenerated after every write.
const (
	BranchesDir = "branches"
	TagsDir     = "tags"
)

// TagRecord is the content of tags/<name>.json.
type TagRecord struct {
	CommitID string `json:"commit_id"`
}

// WriteCache regenerates branches/<name>.json and tags/<name>.json from
// state and removes files for names that no longer exist.
func WriteCache(controlDir string, state *config.State) error {
	var errs []error

	branches := make(map[string]any, len(state.Branches))
	for name, ids := range state.Branches {
		branches[name] = ids
	}
	errs = append(errs, syncDir(filepath.Join(controlDir, BranchesDir), branches))

	tags := make(map[string]any, len(state.Tags))
	for name, id := range state.Tags {
		tags[name] = TagRecord{CommitID: id}
	}
	errs = append(errs, syncDir(filepath.Join(controlDir, TagsDir), tags))

	return errors.Join(errs...)
}

func syncDir(dir string, records map[string]any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	var errs []error
	for name, rec := range records {
		data, err := json.MarshalIndent(rec, "", "    ")
		if err != nil {
			errs = append(errs, fmt.Errorf("marshal %s: %w", name, err))
			continue
		}
		if err := config.WriteFileAtomic(filepath.Join(dir, name+".json"), data); err != nil {
			errs = append(errs, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("list cache dir %s: %w", dir, err))...)
	}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if _, keep := records[name]; keep {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("remove stale cache file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ReadBranchCache reads branches/<name>.json.
func ReadBranchCache(controlDir, name string) ([]string, error) {
	var ids []string
	if err := readJSON(filepath.Join(controlDir, BranchesDir, name+".json"), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ReadTagCache reads tags/<name>.json.
func ReadTagCache(controlDir, name string) (string, error) {
	var rec TagRecord
	if err := readJSON(filepath.Join(controlDir, TagsDir, name+".json"), &rec); err != nil {
		return "", err
	}
	return rec.CommitID, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
