package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quizhub/internal/model"
)

// FileStore persists credentials under the user config dir, sealed at rest.
// Layout: <dir>/session.key holds a random root key, <dir>/session.bin the
// sealed JSON. Both are 0600.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

var _ Store = (*FileStore)(nil)

// DefaultDir resolves the quizhub config dir, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "quizhub")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quizhub")
}

// NewFileStore creates a store rooted at dir (DefaultDir when empty).
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) keyPath() string  { return filepath.Join(s.dir, "session.key") }
func (s *FileStore) dataPath() string { return filepath.Join(s.dir, "session.bin") }

// rootKey loads the root key, creating one on first use.
func (s *FileStore) rootKey() ([]byte, error) {
	if b, err := os.ReadFile(s.keyPath()); err == nil {
		if len(b) != rootKeyLen {
			return nil, fmt.Errorf("session key: bad length %d", len(b))
		}
		return b, nil
	}
	key, err := randBytes(rootKeyLen)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.keyPath(), key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// load reads the committed state. Missing file means an empty session.
func (s *FileStore) load() (Credentials, error) {
	blob, err := os.ReadFile(s.dataPath())
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, err
	}
	key, err := s.rootKey()
	if err != nil {
		return Credentials{}, err
	}
	plain, err := open(key, blob)
	if err != nil {
		return Credentials{}, fmt.Errorf("unseal session: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(plain, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode session: %w", err)
	}
	return c, nil
}

func (s *FileStore) save(c Credentials) error {
	key, err := s.rootKey()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(c)
	if err != nil {
		return err
	}
	blob, err := seal(key, plain)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.dataPath(), blob, 0o600)
}

// mutate applies fn to the committed state under the store lock.
func (s *FileStore) mutate(fn func(*Credentials)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load()
	if err != nil {
		return err
	}
	fn(&c)
	return s.save(c)
}

func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) SetTokens(access, refresh string) error {
	return s.mutate(func(c *Credentials) {
		c.Access = access
		if refresh != "" {
			c.Refresh = refresh
		}
	})
}

func (s *FileStore) SetUser(u *model.User) error {
	return s.mutate(func(c *Credentials) {
		c.User = u
		c.Guest = nil
	})
}

func (s *FileStore) SetGuest(u *model.User) error {
	return s.mutate(func(c *Credentials) {
		c.Guest = u
		c.User = nil
	})
}

func (s *FileStore) UpdatePoints(delta int) error {
	return s.mutate(func(c *Credentials) {
		if c.User != nil {
			c.User.Points += delta
		}
	})
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.dataPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
