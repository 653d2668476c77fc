package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/spf13/afero"
)

// TokenKey is the identifier the token is stored under
const TokenKey = "token"

// Store persists the session token
type Store interface {
	Save(token string) error
	Load() (string, bool, error)
	Clear() error
}

// MemoryStore keeps the token for the lifetime of the process
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save ignores empty tokens
func (s *MemoryStore) Save(token string) error {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load() (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// FileStore keeps the token in a JSON document on disk
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores the token at path on the OS filesystem
func NewFileStore(path string) *FileStore {
	return NewFileStoreFs(afero.NewOsFs(), path)
}

// NewFileStoreFs stores the token at path on fs
func NewFileStoreFs(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the location of the session file
func (s *FileStore) Path() string {
	return s.path
}

// Save ignores empty tokens
func (s *FileStore) Save(token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(map[string]string{TokenKey: token})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode session file")
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return s.wrap(err, "failed to create session directory")
	}

	if err := afero.WriteFile(s.fs, s.path, raw, 0o600); err != nil {
		return s.wrap(err, "failed to write session file")
	}
	return nil
}

func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, s.wrap(err, "failed to read session file")
	}

	doc := map[string]string{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false, s.wrap(err, "failed to decode session file")
	}

	token := doc[TokenKey]
	return token, token != "", nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return s.wrap(err, "failed to remove session file")
	}
	return nil
}

func (s *FileStore) wrap(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithMetadata(map[string]any{"path": s.path})
}
