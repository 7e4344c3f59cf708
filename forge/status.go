package forge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"gitlet/core/objects"
)

// Change is a working tree difference that is not staged.
type Change struct {
	Name    string
	Deleted bool
}

func (c Change) String() string {
	if c.Deleted {
		return c.Name + " (deleted)"
	}
	return c.Name + " (modified)"
}

// Status is a snapshot of the branches, the index and the working tree.
type Status struct {
	Branch    string
	Branches  []string
	Staged    []string
	Removed   []string
	Changes   []Change
	Untracked []string
}

// Clean reports whether nothing is staged, changed or untracked.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Removed) == 0 && len(s.Changes) == 0 && len(s.Untracked) == 0
}

func (r *Repository) Status() (*Status, error) {
	branches, current, err := r.Branches()
	if err != nil {
		return nil, err
	}
	_, head, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Branch:   current,
		Branches: branches,
		Staged:   r.index.AddedNames(),
		Removed:  r.index.RemovedNames(),
	}

	changes, err := r.unstagedChanges(head.Tree)
	if err != nil {
		return nil, err
	}
	st.Changes = changes

	names, err := r.work.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list working tree: %w", err)
	}
	for _, name := range r.ignore.Filter(names) {
		if head.Tree.Has(name) {
			continue
		}
		if _, staged := r.index.Staged(name); staged {
			continue
		}
		st.Untracked = append(st.Untracked, name)
	}
	return st, nil
}

// unstagedChanges compares the working tree with the staged version of
// each file, falling back to the HEAD version when nothing is staged.
func (r *Repository) unstagedChanges(head objects.Tree) ([]Change, error) {
	expected := make(map[string]objects.Digest)
	for name, id := range head {
		if !r.index.Removed(name) {
			expected[name] = id
		}
	}
	for name, id := range r.index.Addition {
		expected[name] = id
	}

	alg := r.objects.Algorithm()
	var changes []Change
	for name, id := range expected {
		data, err := r.work.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			changes = append(changes, Change{Name: name, Deleted: true})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if alg.Sum(data) != id {
			changes = append(changes, Change{Name: name})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
	return changes, nil
}

// WriteStatus renders s in sections, marking the active branch with '*'.
func WriteStatus(w io.Writer, s *Status) error {
	bw := bufio.NewWriter(w)

	section := func(title string, lines []string) {
		fmt.Fprintf(bw, "=== %s ===\n", title)
		for _, line := range lines {
			fmt.Fprintln(bw, line)
		}
		fmt.Fprintln(bw)
	}

	branches := make([]string, len(s.Branches))
	for i, b := range s.Branches {
		if b == s.Branch {
			b = "*" + b
		}
		branches[i] = b
	}
	changes := make([]string, len(s.Changes))
	for i, c := range s.Changes {
		changes[i] = c.String()
	}

	section("Branches", branches)
	section("Staged Files", s.Staged)
	section("Removed Files", s.Removed)
	section("Modifications Not Staged For Commit", changes)
	section("Untracked Files", s.Untracked)
	return bw.Flush()
}
