package refs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/javanhut/simplegit/internal/config"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
)

// Branch is a named, ordered sequence of commit IDs.
type Branch struct {
	Name    string
	Commits []string
	Current bool
}

// Tag binds a name to one commit ID.
type Tag struct {
	Name     string
	CommitID string
}

// Index maintains branches and tags on a repository State. It mutates the
// state in memory only; the caller persists it.
type Index struct {
	state *config.State
}

// New returns an Index over state.
func New(state *config.State) *Index {
	return &Index{state: state}
}

// ValidateName rejects names that cannot be used as a branch or tag file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return sgErrors.Wrap(sgErrors.ErrInvalidName, "name is empty")
	case name == "." || name == "..":
		return sgErrors.Wrapf(sgErrors.ErrInvalidName, "name %q", name)
	case strings.HasPrefix(name, "."):
		return sgErrors.Wrapf(sgErrors.ErrInvalidName, "name %q starts with a dot", name)
	case strings.ContainsAny(name, `/\`):
		return sgErrors.Wrapf(sgErrors.ErrInvalidName, "name %q contains a path separator", name)
	}
	return nil
}

// Current returns the current branch name.
func (ix *Index) Current() string {
	return ix.state.CurrentBranch
}

// Exists reports whether a branch is registered.
func (ix *Index) Exists(name string) bool {
	_, ok := ix.state.Branches[name]
	return ok
}

// CreateBranch registers an empty commit sequence under name.
func (ix *Index) CreateBranch(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if ix.Exists(name) {
		return sgErrors.Wrapf(sgErrors.ErrAlreadyExists, "branch '%s'", name)
	}
	ix.state.Branches[name] = []string{}
	return nil
}

// SwitchBranch moves the current-branch pointer. The working tree is not touched.
func (ix *Index) SwitchBranch(name string) error {
	if !ix.Exists(name) {
		return sgErrors.Wrapf(sgErrors.ErrNotFound, "branch '%s'", name)
	}
	ix.state.CurrentBranch = name
	return nil
}

// DeleteBranch unregisters a branch. The current branch and the default
// branch cannot be deleted. Commit directories stay on disk.
func (ix *Index) DeleteBranch(name string) error {
	if !ix.Exists(name) {
		return sgErrors.Wrapf(sgErrors.ErrNotFound, "branch '%s'", name)
	}
	if name == config.DefaultBranch {
		return sgErrors.Wrapf(sgErrors.ErrInvalidOperation, "cannot delete the default branch '%s'", name)
	}
	if name == ix.state.CurrentBranch {
		return sgErrors.Wrapf(sgErrors.ErrInvalidOperation, "cannot delete the current branch '%s'", name)
	}
	delete(ix.state.Branches, name)
	return nil
}

// Branches returns all branches sorted by name with the current one marked.
func (ix *Index) Branches() []Branch {
	names := make([]string, 0, len(ix.state.Branches))
	for name := range ix.state.Branches {
		names = append(names, name)
	}
	sort.Strings(names)

	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		branches = append(branches, Branch{
			Name:    name,
			Commits: append([]string{}, ix.state.Branches[name]...),
			Current: name == ix.state.CurrentBranch,
		})
	}
	return branches
}

// Commits returns the ordered commit IDs of a branch.
func (ix *Index) Commits(branch string) ([]string, error) {
	ids, ok := ix.state.Branches[branch]
	if !ok {
		return nil, sgErrors.Wrapf(sgErrors.ErrNotFound, "branch '%s'", branch)
	}
	return append([]string{}, ids...), nil
}

// Latest returns the newest commit ID of a branch.
func (ix *Index) Latest(branch string) (string, error) {
	ids, err := ix.Commits(branch)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", sgErrors.Wrapf(sgErrors.ErrNoCommits, "branch '%s'", branch)
	}
	return ids[len(ids)-1], nil
}

// Contains reports whether id is in the branch's sequence.
func (ix *Index) Contains(branch, id string) bool {
	for _, c := range ix.state.Branches[branch] {
		if c == id {
			return true
		}
	}
	return false
}

// AppendCommit adds id to the end of a branch. IDs must be strictly increasing.
func (ix *Index) AppendCommit(branch, id string) error {
	ids, ok := ix.state.Branches[branch]
	if !ok {
		return sgErrors.Wrapf(sgErrors.ErrNotFound, "branch '%s'", branch)
	}
	if n := len(ids); n > 0 && id <= ids[n-1] {
		return sgErrors.Wrapf(sgErrors.ErrInvalidOperation, "commit %s is not newer than %s on branch '%s'", id, ids[n-1], branch)
	}
	ix.state.Branches[branch] = append(ids, id)
	return nil
}

// Find returns the single commit on branch whose ID starts with prefix.
func (ix *Index) Find(branch, prefix string) (string, error) {
	ids, err := ix.Commits(branch)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return "", sgErrors.Wrapf(sgErrors.ErrNotFound, "empty commit id on branch '%s'", branch)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", sgErrors.Wrapf(sgErrors.ErrNotFound, "commit %s on branch '%s'", prefix, branch)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s matches %s on branch '%s': %w", prefix, strings.Join(matches, ", "), branch, sgErrors.ErrAmbiguous)
	}
}

// CreateTag binds name to commitID. Tags are write-once: an existing name
// is rejected even when it points at the same commit. The caller verifies
// that commitID resolves to a commit directory.
func (ix *Index) CreateTag(name, commitID string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if existing, ok := ix.state.Tags[name]; ok {
		return sgErrors.Wrapf(sgErrors.ErrAlreadyExists, "tag '%s' (points to %s)", name, existing)
	}
	ix.state.Tags[name] = commitID
	return nil
}

// HasTag reports whether a tag name is bound.
func (ix *Index) HasTag(name string) bool {
	_, ok := ix.state.Tags[name]
	return ok
}

// Tag returns the commit ID bound to name.
func (ix *Index) Tag(name string) (string, error) {
	id, ok := ix.state.Tags[name]
	if !ok {
		return "", sgErrors.Wrapf(sgErrors.ErrNotFound, "tag '%s'", name)
	}
	return id, nil
}

// Tags returns all bindings sorted by name.
func (ix *Index) Tags() []Tag {
	tags := make([]Tag, 0, len(ix.state.Tags))
	for name, id := range ix.state.Tags {
		tags = append(tags, Tag{Name: name, CommitID: id})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}
