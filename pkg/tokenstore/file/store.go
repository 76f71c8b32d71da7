// Package tokenstorefile persists the session credentials in a JSON file on
// the local disk, readable only by the current user.
package tokenstorefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/openkcm/taskmanager-client/internal/serviceerr"
	"github.com/openkcm/taskmanager-client/pkg/tokenstore"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type Store struct {
	path string
	mu   sync.Mutex
}

var _ = tokenstore.Store(&Store{})

// NewStore returns a store backed by the file at path. Environment variables
// in the path are expanded. The file and its directory are created on first
// write.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("token file path: %w", serviceerr.ErrInvalidInput)
	}

	return &Store{path: filepath.Clean(os.ExpandEnv(path))}, nil
}

// Path returns the resolved location of the token file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}

	v, ok := values[key]
	if !ok {
		return "", tokenstore.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	values[key] = value

	return s.write(values)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)

	return s.write(values)
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	// a file holding JSON null decodes into a nil map
	if values == nil {
		values = make(map[string]string)
	}

	return values, nil
}

// write replaces the file through a rename so readers never observe a
// partially written file.
func (s *Store) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting token file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temporary token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}

	return nil
}
