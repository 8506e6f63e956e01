package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HandoutStore keeps course handout PDFs on the local filesystem under a
// single flat namespace. Names are cleaned so a request can never escape
// the base directory.
type HandoutStore struct{ base string }

func NewHandoutStore(base string) (*HandoutStore, error) {
	if base == "" {
		base = "./data/books"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &HandoutStore{base: base}, nil
}

func (s *HandoutStore) path(name string) (string, error) {
	name = filepath.Clean(name)
	if name == "" || name == "." || strings.Contains(name, "..") || filepath.IsAbs(name) {
		return "", errors.New("invalid handout name")
	}
	return filepath.Join(s.base, name), nil
}

func (s *HandoutStore) Save(name string, r io.Reader) error {
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (s *HandoutStore) Open(name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}
