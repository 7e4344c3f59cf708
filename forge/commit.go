package forge

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
	"gitlet/pkg/storage/objectstore"
	"gitlet/pkg/storage/worktree"
)

// Add stages the current content of name. Staging content identical to
// the HEAD version drops any pending addition instead.
func (r *Repository) Add(name string) error {
	if r.ignore.Match(name) {
		return apperrors.New(apperrors.KindIgnoredFile, name)
	}
	if !worktree.ValidName(name) {
		return apperrors.New(apperrors.KindFileNotFound, name)
	}

	_, head, err := r.headCommit()
	if err != nil {
		return err
	}

	content, err := r.work.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.New(apperrors.KindFileNotFound, name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	id, err := r.objects.PutBlob(content)
	if err != nil {
		return err
	}

	previous := r.index.Add(name, id)
	if tracked, ok := head.Tree[name]; ok && tracked == id {
		r.index.Unstage(name)
	}
	if err := r.saveIndex(); err != nil {
		return err
	}

	r.log.Debug("staged file", "name", name, "blob", id)
	if !previous.IsZero() && previous != id {
		return r.pruneBlob(previous)
	}
	return nil
}

// Rm unstages a pending addition of name, or stages the removal of a
// tracked file and deletes it from the working tree.
func (r *Repository) Rm(name string) error {
	_, head, err := r.headCommit()
	if err != nil {
		return err
	}

	if id, ok := r.index.Unstage(name); ok {
		if err := r.saveIndex(); err != nil {
			return err
		}
		r.log.Debug("unstaged file", "name", name)
		return r.pruneBlob(id)
	}

	if !head.Tree.Has(name) {
		return apperrors.New(apperrors.KindNothingToRemove, name)
	}

	if err := r.work.Remove(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	r.index.Remove(name)
	if err := r.saveIndex(); err != nil {
		return err
	}
	r.log.Debug("staged removal", "name", name)
	return nil
}

// Commit records the staged changes on top of HEAD and advances the
// active branch.
func (r *Repository) Commit(message string) (*objects.Commit, error) {
	if message == "" {
		return nil, apperrors.New(apperrors.KindEmptyMessage, "")
	}
	if r.index.IsEmpty() {
		return nil, apperrors.New(apperrors.KindNoChanges, "")
	}

	_, head, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	return r.commitIndex(head, message, []objects.Digest{head.ID})
}

// commitIndex writes a commit whose tree is head's tree with the index
// applied, moves the active branch to it and clears the index.
func (r *Repository) commitIndex(head *objects.Commit, message string, parents []objects.Digest) (*objects.Commit, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}

	c := &objects.Commit{
		Message:   message,
		Timestamp: objects.FormatTimestamp(r.clock()),
		Parents:   parents,
		Tree:      r.index.Apply(head.Tree),
	}
	id, err := r.writeCommit(c)
	if err != nil {
		return nil, err
	}
	if err := r.refs.SetBranch(branch, id); err != nil {
		return nil, fmt.Errorf("failed to move branch %s: %w", branch, err)
	}

	r.index.Clear()
	if err := r.saveIndex(); err != nil {
		return nil, err
	}

	r.log.Info("committed", "branch", branch, "commit", id)
	return c, nil
}

// pruneBlob deletes a superseded staged blob unless something still
// references it.
func (r *Repository) pruneBlob(id objects.Digest) error {
	referenced, err := r.blobReferenced(id)
	if err != nil {
		return err
	}
	if referenced {
		return nil
	}
	if err := r.objects.DeleteBlob(id); err != nil {
		return fmt.Errorf("failed to prune blob %s: %w", id, err)
	}
	r.log.Debug("pruned blob", "blob", id)
	return nil
}

func (r *Repository) blobReferenced(id objects.Digest) (bool, error) {
	if r.index.References(id) {
		return true, nil
	}
	if r.catalog != nil {
		return r.catalog.ReferencesBlob(id)
	}

	commits, err := r.objects.Commits()
	if err != nil {
		return false, err
	}
	for _, c := range commits {
		for _, blob := range c.Tree {
			if blob == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// resolveCommit expands a full or abbreviated commit id. An id matching
// nothing is reported as NoSuchCommit.
func (r *Repository) resolveCommit(id string) (objects.Digest, error) {
	id = strings.ToLower(strings.TrimSpace(id))

	var (
		d   objects.Digest
		err error
	)
	if r.catalog != nil && id != "" {
		var matches []objects.Digest
		matches, err = r.catalog.Matching(id)
		if err == nil {
			d, err = preferExact(id, matches)
		}
	} else {
		d, err = r.objects.ResolveCommit(id)
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.New(apperrors.KindNoSuchCommit, id)
	}
	return d, err
}

func preferExact(id string, matches []objects.Digest) (objects.Digest, error) {
	for _, m := range matches {
		if string(m) == id {
			return m, nil
		}
	}
	return objectstore.Unique(id, matches)
}
