package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
	"gitlet/core/refs"
	"gitlet/pkg/storage/worktree"
)

// RefStore keeps one file per branch under refsDir and the active branch
// name in headPath.
type RefStore struct {
	refsDir  string
	headPath string
}

func NewRefStore(refsDir, headPath string) (*RefStore, error) {
	if err := os.MkdirAll(refsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create refs directory: %v", err)
	}
	return &RefStore{refsDir: refsDir, headPath: headPath}, nil
}

func (r *RefStore) Branch(name string) (objects.Digest, error) {
	if refs.ValidateName(name) != nil {
		return "", apperrors.New(apperrors.KindNotFound, name)
	}
	data, err := os.ReadFile(filepath.Join(r.refsDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.Wrap(apperrors.KindNotFound, name, err)
		}
		return "", err
	}
	return objects.Digest(strings.TrimSpace(string(data))), nil
}

func (r *RefStore) SetBranch(name string, id objects.Digest) error {
	if err := refs.ValidateName(name); err != nil {
		return err
	}
	return worktree.WriteFileAtomic(filepath.Join(r.refsDir, name), []byte(string(id)+"\n"), 0644)
}

func (r *RefStore) DeleteBranch(name string) error {
	if refs.ValidateName(name) != nil {
		return apperrors.New(apperrors.KindNotFound, name)
	}
	err := os.Remove(filepath.Join(r.refsDir, name))
	if os.IsNotExist(err) {
		return apperrors.New(apperrors.KindNotFound, name)
	}
	return err
}

func (r *RefStore) Branches() ([]string, error) {
	entries, err := os.ReadDir(r.refsDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && refs.ValidateName(e.Name()) == nil && !worktree.IsTemp(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *RefStore) Head() (string, error) {
	data, err := os.ReadFile(r.headPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.Wrap(apperrors.KindNotFound, "HEAD", err)
		}
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", apperrors.New(apperrors.KindNotFound, "HEAD")
	}
	return name, nil
}

func (r *RefStore) SetHead(name string) error {
	return worktree.WriteFileAtomic(r.headPath, []byte(name+"\n"), 0644)
}
