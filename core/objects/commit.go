package objects

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// TimestampLayout is the format commit dates are stored and printed in.
const TimestampLayout = "Mon Jan 02 15:04:05 2006 -0700"

const InitialMessage = "initial commit"

// FormatTimestamp renders t in the commit date format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// EpochTimestamp is the date of every repository's root commit.
func EpochTimestamp() string {
	return FormatTimestamp(time.Unix(0, 0).UTC())
}

// Tree maps file names to blob digests.
type Tree map[string]Digest

// Names returns the tree's file names in lexicographic order.
func (t Tree) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for name, id := range t {
		out[name] = id
	}
	return out
}

func (t Tree) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Equal reports whether both trees hold the same names and digests.
func (t Tree) Equal(other Tree) bool {
	if len(t) != len(other) {
		return false
	}
	for name, id := range t {
		if other[name] != id {
			return false
		}
	}
	return true
}

// Commit is a snapshot of the tracked tree plus its history links.
type Commit struct {
	ID        Digest   `json:"-"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Parents   []Digest `json:"parents"`
	Tree      Tree     `json:"tree"`
}

// NewRootCommit builds the first commit of a repository.
func NewRootCommit() *Commit {
	return &Commit{
		Message:   InitialMessage,
		Timestamp: EpochTimestamp(),
		Parents:   []Digest{},
		Tree:      Tree{},
	}
}

func (c *Commit) IsMerge() bool {
	return len(c.Parents) == 2
}

func (c *Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// FirstParent returns the first parent or the zero digest for the root.
func (c *Commit) FirstParent() Digest {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// IdentityFields lists the values a commit digest is computed from:
// message, timestamp, parent count, parents in order, then name/digest
// pairs in name order.
func (c *Commit) IdentityFields() []string {
	fields := []string{c.Message, c.Timestamp, strconv.Itoa(len(c.Parents))}
	for _, p := range c.Parents {
		fields = append(fields, string(p))
	}
	for _, name := range c.Tree.Names() {
		fields = append(fields, name, string(c.Tree[name]))
	}
	return fields
}

// ComputeID hashes the commit's identity fields and stores the result in ID.
func (c *Commit) ComputeID(alg HashAlgorithm) Digest {
	c.ID = alg.SumFields(c.IdentityFields()...)
	return c.ID
}

// Serialize converts the commit to JSON bytes
func (c *Commit) Serialize() ([]byte, error) {
	if c.Tree == nil {
		c.Tree = Tree{}
	}
	if c.Parents == nil {
		c.Parents = []Digest{}
	}
	return json.Marshal(c)
}

// DeserializeCommit decodes a commit stored under id.
func DeserializeCommit(id Digest, data []byte) (*Commit, error) {
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode commit %s: %w", id, err)
	}
	if c.Tree == nil {
		c.Tree = Tree{}
	}
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("commit %s has %d parents", id, len(c.Parents))
	}
	c.ID = id
	return &c, nil
}
