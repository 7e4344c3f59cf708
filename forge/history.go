package forge

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
)

// Log returns the first-parent history of HEAD, newest first.
func (r *Repository) Log() ([]*objects.Commit, error) {
	_, head, err := r.headCommit()
	if err != nil {
		return nil, err
	}

	history := []*objects.Commit{head}
	for c := head; !c.IsRoot(); {
		parent, err := r.objects.GetCommit(c.FirstParent())
		if err != nil {
			return nil, fmt.Errorf("failed to load parent of %s: %w", c.ID, err)
		}
		history = append(history, parent)
		c = parent
	}
	return history, nil
}

// GlobalLog returns every commit in the store, in store order.
func (r *Repository) GlobalLog() ([]*objects.Commit, error) {
	return r.objects.Commits()
}

// Find returns the ids of commits whose message contains substr. The
// match is case-sensitive.
func (r *Repository) Find(substr string) ([]objects.Digest, error) {
	var ids []objects.Digest
	if r.catalog != nil {
		found, err := r.catalog.Containing(substr)
		if err != nil {
			return nil, fmt.Errorf("failed to search catalog: %w", err)
		}
		ids = found
	} else {
		commits, err := r.objects.Commits()
		if err != nil {
			return nil, err
		}
		for _, c := range commits {
			if strings.Contains(c.Message, substr) {
				ids = append(ids, c.ID)
			}
		}
	}

	if len(ids) == 0 {
		return nil, apperrors.New(apperrors.KindNoMatch, substr)
	}
	return ids, nil
}

// WriteLog renders commits in log format.
func WriteLog(w io.Writer, commits []*objects.Commit) error {
	bw := bufio.NewWriter(w)
	for _, c := range commits {
		fmt.Fprintln(bw, "===")
		fmt.Fprintf(bw, "commit %s\n", c.ID)
		if c.IsMerge() {
			fmt.Fprintf(bw, "Merge: %s %s\n", c.Parents[0].Short(7), c.Parents[1].Short(7))
		}
		fmt.Fprintf(bw, "Date: %s\n", c.Timestamp)
		fmt.Fprintln(bw, c.Message)
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
