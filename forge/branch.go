package forge

import (
	"errors"

	"gitlet/core/apperrors"
	"gitlet/core/refs"
)

const missingBranchMessage = "A branch with that name does not exist."

// Branch creates a branch pointing at the HEAD commit. The active branch
// does not change.
func (r *Repository) Branch(name string) error {
	if err := refs.ValidateName(name); err != nil {
		return err
	}
	if _, err := r.refs.Branch(name); err == nil {
		return apperrors.New(apperrors.KindBranchAlreadyExists, name)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	_, head, err := r.headCommit()
	if err != nil {
		return err
	}
	if err := r.refs.SetBranch(name, head.ID); err != nil {
		return err
	}
	r.log.Debug("created branch", "branch", name, "commit", head.ID)
	return nil
}

// RmBranch deletes the branch label only; its commits stay in the store.
func (r *Repository) RmBranch(name string) error {
	if _, err := r.refs.Branch(name); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Newf(apperrors.KindNoSuchBranch, name, missingBranchMessage)
		}
		return err
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return apperrors.New(apperrors.KindCannotRemoveActiveBranch, name)
	}

	if err := r.refs.DeleteBranch(name); err != nil {
		return err
	}
	r.log.Debug("removed branch", "branch", name)
	return nil
}

// Branches lists branch names in order together with the active one.
func (r *Repository) Branches() ([]string, string, error) {
	names, err := r.refs.Branches()
	if err != nil {
		return nil, "", err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, "", err
	}
	return names, current, nil
}
