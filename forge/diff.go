package forge

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pmezard/go-difflib/difflib"

	"gitlet/core/objects"
)

// FileDiff is the unified diff of one file. Text is empty when the
// working copy matches.
type FileDiff struct {
	Name string
	Text string
}

// Diff compares working files with their staged version, or the HEAD
// version when nothing is staged. With no names it covers every file
// status reports as changed.
func (r *Repository) Diff(names ...string) ([]FileDiff, error) {
	_, head, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		changes, err := r.unstagedChanges(head.Tree)
		if err != nil {
			return nil, err
		}
		for _, c := range changes {
			names = append(names, c.Name)
		}
	}

	diffs := make([]FileDiff, 0, len(names))
	for _, name := range names {
		previous, err := r.baseline(head.Tree, name)
		if err != nil {
			return nil, err
		}
		current, err := r.work.Read(name)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		text, err := unifiedDiff(name, string(previous), string(current))
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, FileDiff{Name: name, Text: text})
	}
	return diffs, nil
}

func (r *Repository) baseline(head objects.Tree, name string) ([]byte, error) {
	if id, ok := r.index.Staged(name); ok {
		return r.objects.GetBlob(id)
	}
	if r.index.Removed(name) {
		return nil, nil
	}
	if id, ok := head[name]; ok {
		return r.objects.GetBlob(id)
	}
	return nil, nil
}

func unifiedDiff(name, previous, current string) (string, error) {
	if previous == current {
		return "", nil
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(d)
}
