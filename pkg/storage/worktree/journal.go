package worktree

import (
	"encoding/json"
	"os"

	"gitlet/core/objects"
)

// Journal phases.
const (
	PhaseStart   = "start"
	PhaseWritten = "written"
)

// Journal modes name the ref move that completes a replacement.
const (
	ModeCheckout = "checkout"
	ModeReset    = "reset"
)

// JournalEntry records a working-tree replacement in progress.
type JournalEntry struct {
	From   objects.Digest `json:"from"`
	To     objects.Digest `json:"to"`
	Branch string         `json:"branch"`
	Mode   string         `json:"mode"`
	Phase  string         `json:"phase"`
}

// Journal persists at most one JournalEntry.
type Journal interface {
	Begin(e JournalEntry) error
	Advance(phase string) error
	Pending() (*JournalEntry, error)
	Clear() error
}

// FileJournal keeps the entry in a JSON file.
type FileJournal struct {
	path string
}

func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

func (j *FileJournal) write(e *JournalEntry) error {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(j.path, b, 0o644)
}

// Begin starts an entry in the start phase.
func (j *FileJournal) Begin(e JournalEntry) error {
	e.Phase = PhaseStart
	return j.write(&e)
}

// Advance updates the phase of the pending entry.
func (j *FileJournal) Advance(phase string) error {
	e, err := j.Pending()
	if err != nil || e == nil {
		return err
	}
	e.Phase = phase
	return j.write(e)
}

// Pending returns the unfinished entry, or nil. A corrupt file is
// discarded and reported as no entry.
func (j *FileJournal) Pending() (*JournalEntry, error) {
	b, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var e JournalEntry
	if err := json.Unmarshal(b, &e); err != nil || e.To == "" {
		return nil, j.Clear()
	}
	return &e, nil
}

// Clear removes the entry after a replacement finishes.
func (j *FileJournal) Clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
