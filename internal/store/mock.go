package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ksyq12/projctl/internal/errors"
)

// MockStore is an in-memory Store for tests
type MockStore struct {
	Files map[string]MockFile
	Dirs  map[string]bool

	// Function mocks - set these to inject failures
	WriteFunc     func(path string, content []byte, mode os.FileMode) error
	MkdirAllFunc  func(dir string) error
	RemoveAllFunc func(path string) error

	// Call tracking - check these to verify interactions
	WriteCalls     []string
	MkdirAllCalls  []string
	RemoveAllCalls []string
}

// MockFile is a file held by MockStore
type MockFile struct {
	Content []byte
	Mode    os.FileMode
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Files: make(map[string]MockFile),
		Dirs:  make(map[string]bool),
	}
}

func clean(path string) string {
	return filepath.Clean("/" + path)
}

func (m *MockStore) addParents(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		m.Dirs[dir] = true
	}
}

// Write stores a file in memory
func (m *MockStore) Write(path string, content []byte, mode os.FileMode) error {
	path = clean(path)
	m.WriteCalls = append(m.WriteCalls, path)
	if m.WriteFunc != nil {
		if err := m.WriteFunc(path, content, mode); err != nil {
			return err
		}
	}
	m.addParents(path)
	m.Files[path] = MockFile{Content: append([]byte(nil), content...), Mode: mode}
	return nil
}

// Read returns a stored file
func (m *MockStore) Read(path string) ([]byte, error) {
	f, ok := m.Files[clean(path)]
	if !ok {
		return nil, errors.WrapSubject(errors.ErrCodeStorage, path, fs.ErrNotExist)
	}
	return f.Content, nil
}

// Exists reports whether a file or directory is stored
func (m *MockStore) Exists(path string) bool {
	path = clean(path)
	_, isFile := m.Files[path]
	return isFile || m.Dirs[path]
}

// List returns the direct children of dir
func (m *MockStore) List(dir string) ([]Entry, error) {
	dir = clean(dir)
	seen := make(map[string]Entry)
	for p, f := range m.Files {
		if filepath.Dir(p) == dir {
			seen[filepath.Base(p)] = Entry{Name: filepath.Base(p), Mode: f.Mode}
		}
	}
	for d := range m.Dirs {
		if filepath.Dir(d) == dir && d != dir {
			seen[filepath.Base(d)] = Entry{Name: filepath.Base(d), Dir: true, Mode: 0755}
		}
	}

	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// MkdirAll records a directory and its parents
func (m *MockStore) MkdirAll(dir string) error {
	dir = clean(dir)
	m.MkdirAllCalls = append(m.MkdirAllCalls, dir)
	if m.MkdirAllFunc != nil {
		if err := m.MkdirAllFunc(dir); err != nil {
			return err
		}
	}
	m.addParents(dir)
	m.Dirs[dir] = true
	return nil
}

// RemoveAll deletes a file or directory tree
func (m *MockStore) RemoveAll(path string) error {
	path = clean(path)
	m.RemoveAllCalls = append(m.RemoveAllCalls, path)
	if m.RemoveAllFunc != nil {
		if err := m.RemoveAllFunc(path); err != nil {
			return err
		}
	}
	prefix := path + "/"
	for p := range m.Files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.Files, p)
		}
	}
	for d := range m.Dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(m.Dirs, d)
		}
	}
	return nil
}

// Content returns a stored file as a string, or "" when missing
func (m *MockStore) Content(path string) string {
	return string(m.Files[clean(path)].Content)
}
