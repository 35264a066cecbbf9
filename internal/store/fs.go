package store

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ksyq12/projctl/internal/errors"
)

// FSStore implements Store on the local filesystem. Every path is resolved
// under root, so "/etc/nginx/conf.d" becomes <root>/etc/nginx/conf.d.
type FSStore struct {
	root string
}

// NewFS creates an FSStore rooted at root ("/" for the real system)
func NewFS(root string) *FSStore {
	if root == "" {
		root = "/"
	}
	return &FSStore{root: root}
}

// Resolve maps a logical path to its location on disk. ".." cannot climb
// above root.
func (s *FSStore) Resolve(path string) string {
	return filepath.Join(s.root, filepath.Clean("/"+path))
}

// Write creates or replaces a file and sets its mode
func (s *FSStore) Write(path string, content []byte, mode os.FileMode) error {
	full := s.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	if err := os.WriteFile(full, content, mode); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(full, mode); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	return nil
}

// Read returns a file's content
func (s *FSStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(s.Resolve(path))
	if err != nil {
		return nil, errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	return data, nil
}

// Exists reports whether path exists
func (s *FSStore) Exists(path string) bool {
	_, err := os.Stat(s.Resolve(path))
	return err == nil
}

// List returns the entries of dir sorted by name
func (s *FSStore) List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(s.Resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapSubject(errors.ErrCodeStorage, dir, err)
	}

	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, errors.WrapSubject(errors.ErrCodeStorage, filepath.Join(dir, e.Name()), err)
		}
		result = append(result, Entry{Name: e.Name(), Dir: e.IsDir(), Mode: info.Mode().Perm()})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// MkdirAll creates dir and its parents
func (s *FSStore) MkdirAll(dir string) error {
	if err := os.MkdirAll(s.Resolve(dir), 0755); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, dir, err)
	}
	return nil
}

// RemoveAll deletes path and everything below it
func (s *FSStore) RemoveAll(path string) error {
	full := s.Resolve(path)
	if full == filepath.Clean(s.root) {
		return &errors.Error{Code: errors.ErrCodeStorage, Subject: path, Message: "refusing to remove the store root"}
	}
	if err := os.RemoveAll(full); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	return nil
}
