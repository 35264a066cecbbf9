// Package store persists generated artifacts.
//
// Store is the only way projctl touches project files. FSStore writes to
// disk under a root directory; MockStore keeps everything in memory for
// tests.
package store

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/project"
)

// Store is the persistence interface for project files. Paths are absolute.
type Store interface {
	// Write creates or replaces a file, creating parent directories
	Write(path string, content []byte, mode os.FileMode) error

	// Read returns a file's content
	Read(path string) ([]byte, error)

	// Exists reports whether a file or directory exists
	Exists(path string) bool

	// List returns the entries of a directory sorted by name. A missing
	// directory yields no entries.
	List(dir string) ([]Entry, error)

	// MkdirAll creates a directory and its parents
	MkdirAll(dir string) error

	// RemoveAll deletes a file or directory tree. Missing paths are not an error.
	RemoveAll(path string) error
}

// Entry is a directory entry returned by List.
type Entry struct {
	Name string
	Dir  bool
	Mode os.FileMode
}

// Apply writes artifacts in order and stops at the first failure. Files
// written before the failure are left in place.
func Apply(s Store, artifacts []project.Artifact) error {
	for _, a := range artifacts {
		if a.Dir {
			logger.Debug("mkdir %s", a.Path)
			if err := s.MkdirAll(a.Path); err != nil {
				return err
			}
			continue
		}
		logger.DebugFields("write artifact", map[string]interface{}{
			"path": a.Path,
			"mode": a.Mode.String(),
			"size": len(a.Content),
		})
		if err := s.Write(a.Path, []byte(a.Content), a.Mode); err != nil {
			return err
		}
	}
	return nil
}

// IsNotExist reports whether err means a path does not exist.
func IsNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist)
}
