package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type fileState struct {
	Items map[string]string `json:"items"`
}

func newFileState() fileState {
	return fileState{Items: map[string]string{}}
}

// FileStorage persists every key into a single JSON document on disk.
// Writes go to a temp file that is renamed over the document.
type FileStorage struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

func NewFileStorage(dataDir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	st := &FileStorage{
		path: filepath.Join(dataDir, "storage.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		// An unreadable document is "no prior data"; the next Set rewrites it.
		logger.Warn("storage document unreadable, starting empty", "path", st.path, "error", err)
		st.s = newFileState()
	}
	return st, nil
}

func (s *FileStorage) Path() string { return s.path }

func (s *FileStorage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Items == nil {
		loaded.Items = map[string]string{}
	}
	s.s = loaded
	return nil
}

func (s *FileStorage) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.s.Items[key]
	return v, ok, nil
}

func (s *FileStorage) Set(ctx context.Context, key, value string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.s.Items[key]
	s.s.Items[key] = value
	if err := s.saveLocked(); err != nil {
		if had {
			s.s.Items[key] = prev
		} else {
			delete(s.s.Items, key)
		}
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStorage) Ping(ctx context.Context) error {
	_ = ctx
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
