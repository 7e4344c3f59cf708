package merge

import (
	"bytes"

	"gitlet/core/objects"
)

// Action is what a merge does with one file.
type Action int

const (
	// Keep leaves the current version (or its absence) alone.
	Keep Action = iota
	// Take writes the given branch's version and stages it.
	Take
	// Delete removes the file from disk and stages the removal.
	Delete
	// Conflict writes both versions between markers and stages the result.
	Conflict
)

var actionNames = map[Action]string{
	Keep:     "keep",
	Take:     "take",
	Delete:   "delete",
	Conflict: "conflict",
}

func (a Action) String() string {
	return actionNames[a]
}

// Step is the resolution of one file. Digests are empty where a side
// has no version of the file.
type Step struct {
	Name    string
	Action  Action
	Split   objects.Digest
	Current objects.Digest
	Given   objects.Digest
}

// Plan resolves every file named in the three trees, in name order.
func Plan(split, current, given objects.Tree) []Step {
	names := make(map[string]bool)
	for _, t := range []objects.Tree{split, current, given} {
		for name := range t {
			names[name] = true
		}
	}
	union := make(objects.Tree, len(names))
	for name := range names {
		union[name] = ""
	}

	steps := make([]Step, 0, len(names))
	for _, name := range union.Names() {
		s := Step{
			Name:    name,
			Split:   split[name],
			Current: current[name],
			Given:   given[name],
		}
		s.Action = resolve(split.Has(name), s.Split, s.Current, s.Given)
		steps = append(steps, s)
	}
	return steps
}

func resolve(inSplit bool, s, c, g objects.Digest) Action {
	if inSplit {
		switch {
		case c == s && g == s:
			return Keep
		case c == s && g == "":
			return Delete
		case c == s:
			return Take
		case g == s:
			return Keep
		case c == g:
			return Keep
		default:
			return Conflict
		}
	}

	switch {
	case g == "":
		return Keep
	case c == "":
		return Take
	case c == g:
		return Keep
	default:
		return Conflict
	}
}

// Conflicts returns the names of the conflicting steps.
func Conflicts(steps []Step) []string {
	var names []string
	for _, s := range steps {
		if s.Action == Conflict {
			names = append(names, s.Name)
		}
	}
	return names
}

// ConflictContent builds the file written for a conflict. A side with no
// version contributes nothing.
func ConflictContent(current, given []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<<<<<<< HEAD\n")
	b.Write(current)
	b.WriteString("=======\n")
	b.Write(given)
	b.WriteString(">>>>>>>\n")
	return b.Bytes()
}
