package forge

import (
	"errors"
	"fmt"

	"gitlet/core/apperrors"
	"gitlet/core/merge"
	"gitlet/core/objects"
	"gitlet/pkg/storage/worktree"
)

// MergeResult describes a completed merge. Commit is nil for a
// fast-forward.
type MergeResult struct {
	Commit        *objects.Commit
	Split         objects.Digest
	FastForwarded bool
	Conflicts     []string
	Steps         []merge.Step
}

// Merge merges the tip of branch into the active branch. Every
// precondition is checked before anything is written. A given branch
// that is already an ancestor is reported as GivenBranchIsAncestor.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	if !r.index.IsEmpty() {
		return nil, apperrors.New(apperrors.KindUncommittedChanges, "")
	}

	givenID, err := r.refs.Branch(branch)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Newf(apperrors.KindNoSuchBranch, branch, missingBranchMessage)
		}
		return nil, err
	}

	current, head, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	if current == branch {
		return nil, apperrors.New(apperrors.KindSelfMerge, branch)
	}

	given, err := r.objects.GetCommit(givenID)
	if err != nil {
		return nil, err
	}
	if err := r.checkUntracked(head.Tree, given.Tree); err != nil {
		return nil, err
	}

	split, err := merge.SplitPoint(r.objects, head.ID, given.ID)
	if err != nil {
		return nil, err
	}
	r.log.Debug("found split point", "current", head.ID, "given", given.ID, "split", split)

	if split == given.ID {
		return nil, apperrors.New(apperrors.KindGivenBranchIsAncestor, branch)
	}
	if split == head.ID {
		if err := r.replaceTree(head, given, current, worktree.ModeReset); err != nil {
			return nil, err
		}
		r.log.Info("fast-forwarded", "branch", current, "commit", given.ID)
		return &MergeResult{Split: split, FastForwarded: true}, nil
	}

	base, err := r.objects.GetCommit(split)
	if err != nil {
		return nil, err
	}

	steps := merge.Plan(base.Tree, head.Tree, given.Tree)
	writes, err := r.prepareMerge(steps)
	if err != nil {
		return nil, err
	}

	for _, s := range steps {
		switch s.Action {
		case merge.Take, merge.Conflict:
			id := writes[s.Name]
			content, err := r.objects.GetBlob(id)
			if err != nil {
				return nil, err
			}
			if err := r.work.Write(s.Name, content); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", s.Name, err)
			}
			r.index.Add(s.Name, id)
		case merge.Delete:
			if err := r.work.Remove(s.Name); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", s.Name, err)
			}
			r.index.Remove(s.Name)
		}
	}

	message := fmt.Sprintf("Merged %s into %s.", branch, current)
	c, err := r.commitIndex(head, message, []objects.Digest{head.ID, given.ID})
	if err != nil {
		return nil, err
	}

	conflicts := merge.Conflicts(steps)
	if len(conflicts) > 0 {
		r.log.Warn("merge produced conflicts", "count", len(conflicts))
	}
	return &MergeResult{
		Commit:    c,
		Split:     split,
		Conflicts: conflicts,
		Steps:     steps,
	}, nil
}

// prepareMerge stores the blob each Take or Conflict step will write,
// so that no working file changes before every blob is available.
func (r *Repository) prepareMerge(steps []merge.Step) (map[string]objects.Digest, error) {
	writes := make(map[string]objects.Digest)
	for _, s := range steps {
		switch s.Action {
		case merge.Take:
			if ok, err := r.objects.Backend().Has(s.Given); err != nil {
				return nil, err
			} else if !ok {
				return nil, apperrors.New(apperrors.KindNotFound, string(s.Given))
			}
			writes[s.Name] = s.Given
		case merge.Conflict:
			cur, err := r.optionalBlob(s.Current)
			if err != nil {
				return nil, err
			}
			giv, err := r.optionalBlob(s.Given)
			if err != nil {
				return nil, err
			}
			id, err := r.objects.PutBlob(merge.ConflictContent(cur, giv))
			if err != nil {
				return nil, err
			}
			writes[s.Name] = id
		}
	}
	return writes, nil
}

func (r *Repository) optionalBlob(id objects.Digest) ([]byte, error) {
	if id.IsZero() {
		return nil, nil
	}
	return r.objects.GetBlob(id)
}
