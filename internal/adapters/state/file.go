// Package state implements run state stores shared by the restore and save steps.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/carry/internal/core/domain"
	"go.trai.ch/carry/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*FileStore)(nil)

// FileStore keeps run state as a JSON object in a file inside the workspace,
// so separate restore and save invocations of one job can share it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to <dir>/state.json.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, domain.StateFileName)}
}

// Path returns the location of the state file.
func (s *FileStore) Path() string {
	return s.path
}

// Save stores value under name.
func (s *FileStore) Save(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[name] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.path)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.path)
	}
	return nil
}

// Read returns the value stored under name, or "" when absent.
func (s *FileStore) Read(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[name], nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStateReadFailed.Error()), "path", s.path)
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStateUnmarshalFailed.Error()), "path", s.path)
	}
	return values, nil
}
