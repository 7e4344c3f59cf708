package merge

import (
	"fmt"

	"gitlet/core/objects"
)

// ParentSource looks up the parents of a commit.
type ParentSource interface {
	Parents(id objects.Digest) ([]objects.Digest, error)
}

// Ancestors returns id and every commit reachable from it over any parent edge.
func Ancestors(src ParentSource, id objects.Digest) (map[objects.Digest]bool, error) {
	seen := map[objects.Digest]bool{id: true}
	queue := []objects.Digest{id}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		parents, err := src.Parents(cur)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return seen, nil
}

// SplitPoint finds the merge base of current and given. It collects every
// ancestor of given, then walks back from current along first parents,
// checking the second parent of a merge before moving on, and stops at the
// first commit in that set. The result is a common ancestor but not always
// the nearest one in criss-cross histories.
func SplitPoint(src ParentSource, current, given objects.Digest) (objects.Digest, error) {
	ancestors, err := Ancestors(src, given)
	if err != nil {
		return "", err
	}

	cur := current
	for {
		if ancestors[cur] {
			return cur, nil
		}
		parents, err := src.Parents(cur)
		if err != nil {
			return "", err
		}
		switch len(parents) {
		case 0:
			return "", fmt.Errorf("no common ancestor between %s and %s", current, given)
		case 2:
			if !ancestors[parents[0]] && ancestors[parents[1]] {
				return parents[1], nil
			}
		}
		cur = parents[0]
	}
}
