package refs

import (
	"sort"
	"strings"
	"sync"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
)

// DefaultBranch is the branch created by init.
const DefaultBranch = "master"

// Store holds branch tips and the name of the active branch.
// Branch and Head return an apperrors NotFound error when absent.
type Store interface {
	Branch(name string) (objects.Digest, error)
	SetBranch(name string, id objects.Digest) error
	DeleteBranch(name string) error
	Branches() ([]string, error)
	Head() (string, error)
	SetHead(name string) error
}

// ValidateName rejects names that cannot be stored as a single ref file.
func ValidateName(name string) error {
	switch {
	case name == "":
		return apperrors.Newf(apperrors.KindInvalidBranchName, name, "A branch name cannot be empty.")
	case name == "HEAD", strings.HasPrefix(name, "."):
		return apperrors.Newf(apperrors.KindInvalidBranchName, name, "Invalid branch name %q.", name)
	case strings.ContainsAny(name, "/\\ \t\n\x00"):
		return apperrors.Newf(apperrors.KindInvalidBranchName, name, "Invalid branch name %q.", name)
	}
	return nil
}

// Memory is an in-memory Store.
type Memory struct {
	mu       sync.RWMutex
	branches map[string]objects.Digest
	head     string
}

func NewMemory() *Memory {
	return &Memory{branches: make(map[string]objects.Digest)}
}

func (m *Memory) Branch(name string) (objects.Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.branches[name]
	if !ok {
		return "", apperrors.New(apperrors.KindNotFound, name)
	}
	return id, nil
}

func (m *Memory) SetBranch(name string, id objects.Digest) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[name] = id
	return nil
}

func (m *Memory) DeleteBranch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.branches[name]; !ok {
		return apperrors.New(apperrors.KindNotFound, name)
	}
	delete(m.branches, name)
	return nil
}

func (m *Memory) Branches() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.branches))
	for name := range m.branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Head() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.head == "" {
		return "", apperrors.New(apperrors.KindNotFound, "HEAD")
	}
	return m.head, nil
}

func (m *Memory) SetHead(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = name
	return nil
}
