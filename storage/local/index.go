package local

import (
	"encoding/json"
	"fmt"
	"os"

	"gitlet/core/objects"
	"gitlet/core/stage"
	"gitlet/pkg/storage/worktree"
)

// IndexFile persists the staging index as JSON.
type IndexFile struct {
	path string
}

func NewIndexFile(path string) *IndexFile {
	return &IndexFile{path: path}
}

// Load returns an empty index when the file does not exist yet.
func (f *IndexFile) Load() (*stage.Index, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stage.New(), nil
		}
		return nil, err
	}

	ix := stage.New()
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, fmt.Errorf("failed to decode index %s: %w", f.path, err)
	}
	if ix.Addition == nil {
		ix.Addition = make(map[string]objects.Digest)
	}
	if ix.Removal == nil {
		ix.Removal = make(map[string]bool)
	}
	return ix, nil
}

func (f *IndexFile) Save(ix *stage.Index) error {
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return err
	}
	return worktree.WriteFileAtomic(f.path, data, 0644)
}
