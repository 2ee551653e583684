package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

type memoryObject struct {
	folderID string
	name     string
	mimeType string
	data     []byte
}

// MemoryStore keeps everything in process. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	folders map[string]string
	objects map[string]memoryObject
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders: map[string]string{},
		objects: map[string]memoryObject{},
	}
}

func (s *MemoryStore) CreateFolder(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.folders[name]; ok {
		return id, nil
	}
	id := uuid.NewString()
	s.folders[name] = id
	return id, nil
}

func (s *MemoryStore) UploadObject(_ context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[id] = memoryObject{folderID: folderID, name: name, mimeType: mimeType, data: buf}
	s.order = append(s.order, id)
	return models.ObjectHandle{ID: id, Name: name}, nil
}

func (s *MemoryStore) ListObjects(_ context.Context, folderID, prefix string) ([]models.ObjectHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ObjectHandle
	for _, id := range s.order {
		obj := s.objects[id]
		if obj.folderID != folderID || !strings.HasPrefix(obj.name, prefix) {
			continue
		}
		out = append(out, models.ObjectHandle{ID: id, Name: obj.name})
	}
	return out, nil
}

func (s *MemoryStore) GetObject(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
