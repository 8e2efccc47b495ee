package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/floorcad/pkg/errors"
)

// MemoryStore keeps artifacts in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Artifact
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Artifact), now: time.Now}
}

func (s *MemoryStore) Put(ctx context.Context, a *Artifact) error {
	if err := validateArtifact(a); err != nil {
		return err
	}
	stored := *a
	stored.Data = append([]byte(nil), a.Data...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[a.ID] == nil {
		s.data[a.ID] = make(map[string]Artifact)
	}
	s.data[a.ID][a.Format] = stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id, format string) (*Artifact, error) {
	if err := validateKey(id, format); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[id][format]
	if !ok {
		return nil, notFound(id, format)
	}
	a.Data = append([]byte(nil), a.Data...)
	return &a, nil
}

func (s *MemoryStore) List(ctx context.Context, id string) ([]string, error) {
	if err := errors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	formats := make([]string, 0, len(s.data[id]))
	for f := range s.data[id] {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDrawingID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
