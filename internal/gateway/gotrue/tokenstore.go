package gotrue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"cddiller-backend/internal/domain"
)

// TokenStore persists the current session between process runs.
type TokenStore interface {
	Load() (*domain.Session, error) // (nil, nil) when no session is stored
	Save(s *domain.Session) error
	Clear() error
}

// MemoryTokenStore holds the session in memory only. Used by the API server
// (which is stateless per request) and by tests.
type MemoryTokenStore struct {
	mu sync.Mutex
	s  *domain.Session
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load() (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryTokenStore) Save(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// FileTokenStore persists the session as JSON on disk, 0600. Used by the
// operator CLI so a login survives between invocations.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultSessionPath places the session file under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cddiller", "session.json"), nil
}

func (f *FileTokenStore) Load() (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt session file is treated as no session
		_ = os.Remove(f.path)
		return nil, nil
	}
	return &s, nil
}

func (f *FileTokenStore) Save(s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileTokenStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
