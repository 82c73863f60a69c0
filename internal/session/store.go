package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fitsync/fitsync/internal/localstate"
)

const filePerm = 0o600

// Store reads and writes the session file.
type Store struct {
	dir  string
	path string
}

// NewStore creates dir (0700) if needed.
func NewStore(dir string) (*Store, error) {
	dir, err := localstate.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, path: filepath.Join(dir, FileName)}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Exists() bool { return localstate.Exists(s.path) }

// Load reads and decodes the session file.
func (s *Store) Load() (*Record, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save replaces the session file with r.
func (s *Store) Save(r Record) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	return s.WriteRaw(data)
}

// ReadRaw returns the session file bytes, or ErrNoSession.
func (s *Store) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	return data, err
}

// WriteRaw replaces the session file with data, readable by the owner only.
func (s *Store) WriteRaw(data []byte) error {
	return localstate.WriteFileAtomic(s.path, data, filePerm)
}
