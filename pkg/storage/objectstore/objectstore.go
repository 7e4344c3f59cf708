package objectstore

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
)

// Backend is a key-value store for serialized objects. Put on an existing
// key is a no-op. Get returns an apperrors NotFound error for unknown keys.
type Backend interface {
	Put(id objects.Digest, kind objects.Kind, data []byte) error
	Get(id objects.Digest) (objects.Kind, []byte, error)
	Has(id objects.Digest) (bool, error)
	Delete(id objects.Digest) error
	List() ([]objects.Info, error)
	Close() error
}

// Stats summarises the store's contents.
type Stats struct {
	Blobs   int
	Commits int
	Bytes   int64
}

// ObjectStore stores blobs and commits in a Backend, keyed by digest.
type ObjectStore struct {
	backend   Backend
	algorithm objects.HashAlgorithm
}

func New(backend Backend, algorithm objects.HashAlgorithm) *ObjectStore {
	return &ObjectStore{backend: backend, algorithm: algorithm}
}

func (s *ObjectStore) Algorithm() objects.HashAlgorithm {
	return s.algorithm
}

func (s *ObjectStore) Backend() Backend {
	return s.backend
}

func (s *ObjectStore) Close() error {
	return s.backend.Close()
}

// PutBlob stores raw file content.
func (s *ObjectStore) PutBlob(content []byte) (objects.Digest, error) {
	blob := objects.NewBlob(s.algorithm, content)
	if err := s.backend.Put(blob.ID, objects.KindBlob, content); err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", blob.ID, err)
	}
	return blob.ID, nil
}

func (s *ObjectStore) GetBlob(id objects.Digest) ([]byte, error) {
	kind, data, err := s.backend.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != objects.KindBlob {
		return nil, apperrors.Newf(apperrors.KindNotFound, string(id), "Object %s is a %s, not a blob.", id, kind)
	}
	return data, nil
}

// DeleteBlob removes a blob. Missing blobs are ignored.
func (s *ObjectStore) DeleteBlob(id objects.Digest) error {
	kind, _, err := s.backend.Get(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if kind != objects.KindBlob {
		return fmt.Errorf("refusing to delete %s object %s", kind, id)
	}
	return s.backend.Delete(id)
}

// PutCommit computes the commit's digest, stores it and sets c.ID.
func (s *ObjectStore) PutCommit(c *objects.Commit) (objects.Digest, error) {
	id := c.ComputeID(s.algorithm)
	data, err := c.Serialize()
	if err != nil {
		return "", err
	}
	if err := s.backend.Put(id, objects.KindCommit, data); err != nil {
		return "", fmt.Errorf("failed to store commit %s: %w", id, err)
	}
	return id, nil
}

func (s *ObjectStore) GetCommit(id objects.Digest) (*objects.Commit, error) {
	kind, data, err := s.backend.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != objects.KindCommit {
		return nil, apperrors.Newf(apperrors.KindNotFound, string(id), "Object %s is a %s, not a commit.", id, kind)
	}
	return objects.DeserializeCommit(id, data)
}

// Parents satisfies merge.ParentSource.
func (s *ObjectStore) Parents(id objects.Digest) ([]objects.Digest, error) {
	c, err := s.GetCommit(id)
	if err != nil {
		return nil, err
	}
	return c.Parents, nil
}

// CommitIDs lists the digests of all stored commits in backend order.
func (s *ObjectStore) CommitIDs() ([]objects.Digest, error) {
	infos, err := s.backend.List()
	if err != nil {
		return nil, err
	}
	var ids []objects.Digest
	for _, info := range infos {
		if info.Kind == objects.KindCommit {
			ids = append(ids, info.ID)
		}
	}
	return ids, nil
}

// Commits loads every stored commit in backend order.
func (s *ObjectStore) Commits() ([]*objects.Commit, error) {
	ids, err := s.CommitIDs()
	if err != nil {
		return nil, err
	}
	commits := make([]*objects.Commit, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetCommit(id)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// MatchCommits returns the commit digests containing fragment, sorted.
func (s *ObjectStore) MatchCommits(fragment string) ([]objects.Digest, error) {
	ids, err := s.CommitIDs()
	if err != nil {
		return nil, err
	}
	var matches []objects.Digest
	for _, id := range ids {
		if strings.Contains(string(id), fragment) {
			matches = append(matches, id)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return matches, nil
}

// ResolveCommit turns a full or abbreviated id into a commit digest. An
// exact match wins; otherwise exactly one commit digest must contain id.
func (s *ObjectStore) ResolveCommit(id string) (objects.Digest, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", apperrors.New(apperrors.KindNotFound, id)
	}

	kind, _, err := s.backend.Get(objects.Digest(id))
	switch {
	case err == nil && kind == objects.KindCommit:
		return objects.Digest(id), nil
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return "", err
	}

	matches, err := s.MatchCommits(id)
	if err != nil {
		return "", err
	}
	return Unique(id, matches)
}

// Unique applies the abbreviated-id rule to a list of candidates.
func Unique(id string, matches []objects.Digest) (objects.Digest, error) {
	switch len(matches) {
	case 0:
		return "", apperrors.New(apperrors.KindNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", apperrors.Newf(apperrors.KindAmbiguousID, id, "Commit id %s is ambiguous.", id)
	}
}

func (s *ObjectStore) Stats() (Stats, error) {
	infos, err := s.backend.List()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, info := range infos {
		switch info.Kind {
		case objects.KindBlob:
			st.Blobs++
		case objects.KindCommit:
			st.Commits++
		}
		st.Bytes += info.Size
	}
	return st, nil
}
