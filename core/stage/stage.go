package stage

import (
	"sort"

	"gitlet/core/objects"
)

// Index records changes waiting for the next commit. A name is never
// present in Addition and Removal at the same time.
type Index struct {
	Addition map[string]objects.Digest `json:"addition"`
	Removal  map[string]bool           `json:"removal"`
}

func New() *Index {
	return &Index{
		Addition: make(map[string]objects.Digest),
		Removal:  make(map[string]bool),
	}
}

func (ix *Index) ensure() {
	if ix.Addition == nil {
		ix.Addition = make(map[string]objects.Digest)
	}
	if ix.Removal == nil {
		ix.Removal = make(map[string]bool)
	}
}

// Add stages name for addition and returns the digest it replaced, if any.
func (ix *Index) Add(name string, id objects.Digest) objects.Digest {
	ix.ensure()
	delete(ix.Removal, name)
	prev := ix.Addition[name]
	ix.Addition[name] = id
	return prev
}

// Remove stages name for removal and returns the addition it dropped, if any.
func (ix *Index) Remove(name string) objects.Digest {
	ix.ensure()
	prev := ix.Addition[name]
	delete(ix.Addition, name)
	ix.Removal[name] = true
	return prev
}

// Unstage drops a pending addition without recording a removal.
func (ix *Index) Unstage(name string) (objects.Digest, bool) {
	id, ok := ix.Addition[name]
	if ok {
		delete(ix.Addition, name)
	}
	return id, ok
}

func (ix *Index) Staged(name string) (objects.Digest, bool) {
	id, ok := ix.Addition[name]
	return id, ok
}

func (ix *Index) Removed(name string) bool {
	return ix.Removal[name]
}

// References reports whether any pending addition points at id.
func (ix *Index) References(id objects.Digest) bool {
	for _, staged := range ix.Addition {
		if staged == id {
			return true
		}
	}
	return false
}

func (ix *Index) IsEmpty() bool {
	return len(ix.Addition) == 0 && len(ix.Removal) == 0
}

func (ix *Index) Clear() {
	ix.Addition = make(map[string]objects.Digest)
	ix.Removal = make(map[string]bool)
}

func (ix *Index) AddedNames() []string {
	names := make([]string, 0, len(ix.Addition))
	for name := range ix.Addition {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ix *Index) RemovedNames() []string {
	names := make([]string, 0, len(ix.Removal))
	for name := range ix.Removal {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the index on base: additions replace or add entries,
// removals delete them. base is not modified.
func (ix *Index) Apply(base objects.Tree) objects.Tree {
	tree := base.Clone()
	for name, id := range ix.Addition {
		tree[name] = id
	}
	for name := range ix.Removal {
		delete(tree, name)
	}
	return tree
}

func (ix *Index) Clone() *Index {
	out := New()
	for name, id := range ix.Addition {
		out.Addition[name] = id
	}
	for name := range ix.Removal {
		out.Removal[name] = true
	}
	return out
}

// Store persists the index between invocations.
type Store interface {
	Load() (*Index, error)
	Save(ix *Index) error
}

// MemoryStore keeps the index in memory.
type MemoryStore struct {
	saved *Index
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*Index, error) {
	if m.saved == nil {
		return New(), nil
	}
	return m.saved.Clone(), nil
}

func (m *MemoryStore) Save(ix *Index) error {
	m.saved = ix.Clone()
	return nil
}
