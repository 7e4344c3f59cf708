package local

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
	"gitlet/pkg/storage/worktree"
)

// Payload codecs recorded in the second header byte.
const (
	codecRaw  byte = 0
	codecZstd byte = 1
)

const headerSize = 2

// Store keeps one file per object under dir, named by the full digest.
// Each file starts with a kind byte and a codec byte; payloads larger
// than the threshold are zstd compressed.
type Store struct {
	dir       string
	threshold int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	mu        sync.RWMutex
}

// NewStore opens the objects directory, creating it if needed. A
// threshold of 0 disables compression.
func NewStore(dir string, threshold int) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %v", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}

	return &Store{
		dir:       dir,
		threshold: threshold,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

func (s *Store) objectPath(id objects.Digest) (string, error) {
	name := string(id)
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", apperrors.New(apperrors.KindNotFound, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put writes the object unless a file for id already exists.
func (s *Store) Put(id objects.Digest, kind objects.Kind, data []byte) error {
	path, err := s.objectPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	codec := codecRaw
	payload := data
	if s.threshold > 0 && len(data) > s.threshold {
		codec = codecZstd
		payload = s.encoder.EncodeAll(data, nil)
	}

	buf := make([]byte, 0, headerSize+len(payload))
	buf = append(buf, byte(kind), codec)
	buf = append(buf, payload...)

	if err := worktree.WriteFileAtomic(path, buf, 0644); err != nil {
		return apperrors.NewStorageError("put", path, "failed to write object", err)
	}
	return nil
}

// Get reads and decodes an object.
func (s *Store) Get(id objects.Digest) (objects.Kind, []byte, error) {
	path, err := s.objectPath(id)
	if err != nil {
		return 0, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, apperrors.Wrap(apperrors.KindNotFound, string(id), err)
		}
		return 0, nil, apperrors.NewStorageError("get", path, "failed to read object", err)
	}
	return s.decode(path, raw)
}

func (s *Store) decode(path string, raw []byte) (objects.Kind, []byte, error) {
	if len(raw) < headerSize {
		return 0, nil, apperrors.NewStorageError("get", path, "object header truncated", io.ErrUnexpectedEOF)
	}
	kind := objects.Kind(raw[0])
	if !kind.Valid() {
		return 0, nil, apperrors.NewStorageError("get", path, fmt.Sprintf("unknown object kind %d", raw[0]), nil)
	}

	switch raw[1] {
	case codecRaw:
		return kind, raw[headerSize:], nil
	case codecZstd:
		data, err := s.decoder.DecodeAll(raw[headerSize:], nil)
		if err != nil {
			return 0, nil, apperrors.NewStorageError("get", path, "failed to decompress object", err)
		}
		return kind, data, nil
	default:
		return 0, nil, apperrors.NewStorageError("get", path, fmt.Sprintf("unknown codec %d", raw[1]), nil)
	}
}

func (s *Store) Has(id objects.Digest) (bool, error) {
	path, err := s.objectPath(id)
	if err != nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Delete removes an object file. Missing objects are ignored.
func (s *Store) Delete(id objects.Digest) error {
	path, err := s.objectPath(id)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError("delete", path, "failed to remove object", err)
	}
	return nil
}

// List reads every object header in the directory, in name order. Size is
// the stored file size.
func (s *Store) List() ([]objects.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	infos := make([]objects.Info, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.Contains(e.Name(), ".") {
			continue
		}
		kind, size, err := s.readHeader(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		infos = append(infos, objects.Info{ID: objects.Digest(e.Name()), Kind: kind, Size: size})
	}
	return infos, nil
}

func (s *Store) readHeader(path string) (objects.Kind, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, apperrors.NewStorageError("list", path, "object header truncated", err)
		}
		return 0, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	return objects.Kind(header[0]), info.Size(), nil
}

func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return nil
}
