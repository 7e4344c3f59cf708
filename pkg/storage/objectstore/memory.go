package objectstore

import (
	"sync"

	"gitlet/core/apperrors"
	"gitlet/core/objects"
)

type memoryObject struct {
	kind objects.Kind
	data []byte
}

// MemoryBackend keeps objects in a map, listing them in insertion order.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[objects.Digest]memoryObject
	order   []objects.Digest
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[objects.Digest]memoryObject)}
}

func (m *MemoryBackend) Put(id objects.Digest, kind objects.Kind, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; ok {
		return nil
	}
	m.objects[id] = memoryObject{kind: kind, data: append([]byte(nil), data...)}
	m.order = append(m.order, id)
	return nil
}

func (m *MemoryBackend) Get(id objects.Digest) (objects.Kind, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[id]
	if !ok {
		return 0, nil, apperrors.New(apperrors.KindNotFound, string(id))
	}
	return obj.kind, append([]byte(nil), obj.data...), nil
}

func (m *MemoryBackend) Has(id objects.Digest) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok, nil
}

func (m *MemoryBackend) Delete(id objects.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		return nil
	}
	delete(m.objects, id)
	for i, d := range m.order {
		if d == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryBackend) List() ([]objects.Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]objects.Info, 0, len(m.order))
	for _, id := range m.order {
		obj := m.objects[id]
		infos = append(infos, objects.Info{ID: id, Kind: obj.kind, Size: int64(len(obj.data))})
	}
	return infos, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
