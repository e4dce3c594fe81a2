// Package favorites persists the repository specs a user evaluated, per API host.
package favorites

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a YAML file mapping an API host to its favorite specs
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns the specs saved for namespace
func (s *Store) List(namespace string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), data[namespace]...), nil
}

// Add appends specs that are not saved yet. It reports whether anything changed.
func (s *Store) Add(namespace string, specs ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}

	changed := false
	for _, spec := range specs {
		if spec == "" || slices.Contains(data[namespace], spec) {
			continue
		}
		data[namespace] = append(data[namespace], spec)
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, s.save(data)
}

// Remove deletes spec. It reports whether spec was saved.
func (s *Store) Remove(namespace, spec string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}

	idx := slices.Index(data[namespace], spec)
	if idx < 0 {
		return false, nil
	}
	data[namespace] = slices.Delete(data[namespace], idx, idx+1)
	if len(data[namespace]) == 0 {
		delete(data, namespace)
	}
	return true, s.save(data)
}

func (s *Store) load() (map[string][]string, error) {
	data := make(map[string][]string)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse favorites %s: %w", s.path, err)
	}
	if data == nil {
		data = make(map[string][]string)
	}
	return data, nil
}

func (s *Store) save(data map[string][]string) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}
