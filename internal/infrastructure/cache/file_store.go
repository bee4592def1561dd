package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/pkg/filesystem"
	"github.com/doeshing/cmdverify/internal/ports"
)

const entryExt = ".json"

// FileStore keeps one JSON blob per key under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir (typically <cacheDir>/commands).
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get retrieves the raw bytes for key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Put writes value for key, replacing any previous entry.
func (s *FileStore) Put(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("cache key is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(s.pathFor(key), value, domain.FilePermissions)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.pathFor(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes the whole store directory.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(s.dir)
}

// Keys lists stored keys in lexical order (best-effort).
func (s *FileStore) Keys() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, entryExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, entryExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, key+entryExt)
}

var _ ports.KeyValueStore = (*FileStore)(nil)
