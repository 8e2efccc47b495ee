package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/floorcad/pkg/errors"
)

// FileStore keeps artifacts as files named <id>.<format> in one directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, sinkFailure(err, "create output dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file an artifact is stored in.
func (s *FileStore) Path(id, format string) string {
	return filepath.Join(s.dir, id+"."+format)
}

func (s *FileStore) Put(ctx context.Context, a *Artifact) error {
	if err := validateArtifact(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(a.ID, a.Format)
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return sinkFailure(err, "write %s", path)
	}
	if !a.CreatedAt.IsZero() {
		_ = os.Chtimes(path, a.CreatedAt, a.CreatedAt)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id, format string) (*Artifact, error) {
	if err := validateKey(id, format); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(id, format)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(id, format)
	}
	if err != nil {
		return nil, sinkFailure(err, "read %s", path)
	}

	created := time.Time{}
	if info, err := os.Stat(path); err == nil {
		created = info.ModTime()
	}
	return &Artifact{ID: id, Format: format, Data: data, CreatedAt: created}, nil
}

func (s *FileStore) List(ctx context.Context, id string) ([]string, error) {
	if err := errors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(id)
}

func (s *FileStore) list(id string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, sinkFailure(err, "read output dir %s", s.dir)
	}
	prefix := id + "."
	formats := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		// Ids may contain dots, so "a.b.dxf" belongs to "a.b", not "a".
		format := strings.TrimPrefix(e.Name(), prefix)
		if ValidateFormat(format) == nil {
			formats = append(formats, format)
		}
	}
	sort.Strings(formats)
	return formats, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDrawingID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	formats, err := s.list(id)
	if err != nil {
		return err
	}
	for _, f := range formats {
		if err := os.Remove(s.Path(id, f)); err != nil && !os.IsNotExist(err) {
			return sinkFailure(err, "remove %s", s.Path(id, f))
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
