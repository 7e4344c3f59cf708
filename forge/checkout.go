package forge

import (
	"fmt"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
	"gitlet/pkg/storage/worktree"
)

// CheckoutFile restores name in the working tree from the HEAD commit.
func (r *Repository) CheckoutFile(name string) error {
	_, head, err := r.headCommit()
	if err != nil {
		return err
	}
	return r.checkoutFileFrom(head, head, name)
}

// CheckoutFileAt restores name from the commit identified by commitID,
// which may be abbreviated. The index and refs are not touched.
func (r *Repository) CheckoutFileAt(commitID, name string) error {
	_, head, err := r.headCommit()
	if err != nil {
		return err
	}
	id, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	target, err := r.objects.GetCommit(id)
	if err != nil {
		return err
	}
	return r.checkoutFileFrom(head, target, name)
}

func (r *Repository) checkoutFileFrom(head, target *objects.Commit, name string) error {
	blob, ok := target.Tree[name]
	if !ok {
		return apperrors.New(apperrors.KindFileNotInCommit, name)
	}
	if err := r.checkUntracked(head.Tree, objects.Tree{name: blob}); err != nil {
		return err
	}

	content, err := r.objects.GetBlob(blob)
	if err != nil {
		return err
	}
	if err := r.work.Write(name, content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	r.log.Debug("checked out file", "name", name, "commit", target.ID)
	return nil
}

// CheckoutBranch replaces the working tree with the tip of branch and
// makes it the active branch.
func (r *Repository) CheckoutBranch(branch string) error {
	target, err := r.BranchTip(branch)
	if err != nil {
		return err
	}

	current, head, err := r.headCommit()
	if err != nil {
		return err
	}
	if current == branch {
		return apperrors.New(apperrors.KindNoOpCheckout, branch)
	}

	to, err := r.objects.GetCommit(target)
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head.Tree, to.Tree); err != nil {
		return err
	}
	return r.replaceTree(head, to, branch, worktree.ModeCheckout)
}

// Reset replaces the working tree with the commit identified by commitID
// and moves the active branch to it.
func (r *Repository) Reset(commitID string) error {
	branch, head, err := r.headCommit()
	if err != nil {
		return err
	}
	id, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	to, err := r.objects.GetCommit(id)
	if err != nil {
		return err
	}
	if err := r.checkUntracked(head.Tree, to.Tree); err != nil {
		return err
	}
	return r.replaceTree(head, to, branch, worktree.ModeReset)
}

// checkUntracked fails if writing target would overwrite a file that is
// neither tracked by head nor staged for addition.
func (r *Repository) checkUntracked(head, target objects.Tree) error {
	names, err := r.work.List()
	if err != nil {
		return fmt.Errorf("failed to list working tree: %w", err)
	}
	for _, name := range r.ignore.Filter(names) {
		if head.Has(name) || !target.Has(name) {
			continue
		}
		if _, staged := r.index.Staged(name); staged {
			continue
		}
		return apperrors.New(apperrors.KindUntrackedFileInTheWay, name)
	}
	return nil
}

// replaceTree swaps the working tree from one commit to another, then
// moves refs according to mode. The journal entry lets Open finish the
// job if the process dies in between.
func (r *Repository) replaceTree(from, to *objects.Commit, branch, mode string) error {
	contents, err := r.loadTree(to.Tree)
	if err != nil {
		return err
	}

	entry := worktree.JournalEntry{From: from.ID, To: to.ID, Branch: branch, Mode: mode}
	if r.journal != nil {
		if err := r.journal.Begin(entry); err != nil {
			return fmt.Errorf("failed to begin journal: %w", err)
		}
	}

	if err := r.writeTree(from.Tree, to.Tree, contents); err != nil {
		return err
	}

	if r.journal != nil {
		if err := r.journal.Advance(worktree.PhaseWritten); err != nil {
			return fmt.Errorf("failed to advance journal: %w", err)
		}
	}
	return r.completeMove(entry)
}

func (r *Repository) loadTree(tree objects.Tree) (map[string][]byte, error) {
	contents := make(map[string][]byte, len(tree))
	for name, id := range tree {
		data, err := r.objects.GetBlob(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		contents[name] = data
	}
	return contents, nil
}

func (r *Repository) writeTree(from, to objects.Tree, contents map[string][]byte) error {
	for _, name := range from.Names() {
		if to.Has(name) {
			continue
		}
		if err := r.work.Remove(name); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	for _, name := range to.Names() {
		if err := r.work.Write(name, contents[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func (r *Repository) completeMove(e worktree.JournalEntry) error {
	switch e.Mode {
	case worktree.ModeCheckout:
		if err := r.refs.SetHead(e.Branch); err != nil {
			return fmt.Errorf("failed to switch to %s: %w", e.Branch, err)
		}
	case worktree.ModeReset:
		if err := r.refs.SetBranch(e.Branch, e.To); err != nil {
			return fmt.Errorf("failed to move %s: %w", e.Branch, err)
		}
	default:
		return fmt.Errorf("unknown journal mode %q", e.Mode)
	}

	r.index.Clear()
	if err := r.saveIndex(); err != nil {
		return err
	}
	if r.journal != nil {
		if err := r.journal.Clear(); err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}
	}
	r.log.Debug("moved to commit", "branch", e.Branch, "commit", e.To, "mode", e.Mode)
	return nil
}

// Recover finishes a working tree replacement that was interrupted. It
// reports whether there was one.
func (r *Repository) Recover() (bool, error) {
	if r.journal == nil {
		return false, nil
	}
	e, err := r.journal.Pending()
	if err != nil || e == nil {
		return false, err
	}

	r.log.Warn("recovering interrupted checkout", "branch", e.Branch, "to", e.To, "phase", e.Phase)

	to, err := r.objects.GetCommit(e.To)
	if err != nil {
		return false, err
	}
	if e.Phase != worktree.PhaseWritten {
		from, err := r.objects.GetCommit(e.From)
		if err != nil {
			return false, err
		}
		contents, err := r.loadTree(to.Tree)
		if err != nil {
			return false, err
		}
		if err := r.writeTree(from.Tree, to.Tree, contents); err != nil {
			return false, err
		}
	}
	return true, r.completeMove(*e)
}
