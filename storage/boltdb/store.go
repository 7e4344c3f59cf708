package boltdb

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
)

const objectsBucket = "objects"

// Store keeps objects in a single bbolt file. Values are the kind byte
// followed by the payload; keys are digests.
type Store struct {
	db   *bolt.DB
	once sync.Once
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("bolt store path is required")
	}

	cleaned := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(cleaned, 0o600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(objectsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Put(id objects.Digest, kind objects.Kind, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(objectsBucket))
		if b.Get([]byte(id)) != nil {
			return nil
		}
		value := make([]byte, 0, 1+len(data))
		value = append(value, byte(kind))
		value = append(value, data...)
		return b.Put([]byte(id), value)
	})
}

func (s *Store) Get(id objects.Digest) (objects.Kind, []byte, error) {
	var kind objects.Kind
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(objectsBucket)).Get([]byte(id))
		if len(value) == 0 {
			return apperrors.New(apperrors.KindNotFound, string(id))
		}
		kind = objects.Kind(value[0])
		data = append([]byte{}, value[1:]...)
		return nil
	})
	return kind, data, err
}

func (s *Store) Has(id objects.Digest) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket([]byte(objectsBucket)).Get([]byte(id)) != nil
		return nil
	})
	return ok, err
}

func (s *Store) Delete(id objects.Digest) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(objectsBucket)).Delete([]byte(id))
	})
}

// List walks the bucket in key order.
func (s *Store) List() ([]objects.Info, error) {
	var infos []objects.Info
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(objectsBucket)).ForEach(func(k, v []byte) error {
			if len(v) == 0 {
				return nil
			}
			infos = append(infos, objects.Info{
				ID:   objects.Digest(k),
				Kind: objects.Kind(v[0]),
				Size: int64(len(v) - 1),
			})
			return nil
		})
	})
	return infos, err
}

// Close shuts down the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}
