// Package backup archives project files and nginx configuration into a
// gzipped tarball and restores them.
package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/store"
)

// Archiver backs up a fixed set of directory trees.
type Archiver struct {
	store    store.Store
	archives store.Store
	roots    []string
}

// New creates an Archiver covering roots.
func New(s store.Store, roots ...string) *Archiver {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		cleaned = append(cleaned, filepath.Clean(r))
	}
	return &Archiver{store: s, archives: s, roots: cleaned}
}

// WithArchiveStore makes Create and Restore write and read archives through
// s instead of the store holding the archived trees.
func (a *Archiver) WithArchiveStore(s store.Store) *Archiver {
	a.archives = s
	return a
}

// FileName returns the archive name for a backup taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("projctl-backup-%s.tar.gz", now.UTC().Format("20060102-150405"))
}

// Create writes an archive of every root into destDir and returns its path
// and the number of files archived. Missing roots are skipped.
func (a *Archiver) Create(destDir string, now time.Time) (string, int, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	count := 0
	for _, root := range a.roots {
		if !a.store.Exists(root) {
			logger.Debug("backup: %s does not exist, skipping", root)
			continue
		}
		n, err := a.addTree(tw, root, now)
		if err != nil {
			return "", 0, err
		}
		count += n
	}

	if err := tw.Close(); err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeStorage, "failed to finish archive", err)
	}
	if err := gz.Close(); err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeStorage, "failed to finish archive", err)
	}

	dest := filepath.Join(destDir, FileName(now))
	if err := a.archives.Write(dest, buf.Bytes(), 0600); err != nil {
		return "", 0, err
	}
	return dest, count, nil
}

func (a *Archiver) addTree(tw *tar.Writer, dir string, now time.Time) (int, error) {
	if err := writeHeader(tw, &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     archiveName(dir) + "/",
		Mode:     0755,
		ModTime:  now,
	}); err != nil {
		return 0, err
	}

	entries, err := a.store.List(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name)
		if e.Dir {
			n, err := a.addTree(tw, path, now)
			if err != nil {
				return 0, err
			}
			count += n
			continue
		}

		data, err := a.store.Read(path)
		if err != nil {
			return 0, err
		}
		if err := writeHeader(tw, &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     archiveName(path),
			Mode:     int64(e.Mode.Perm()),
			Size:     int64(len(data)),
			ModTime:  now,
		}); err != nil {
			return 0, err
		}
		if _, err := tw.Write(data); err != nil {
			return 0, errors.WrapSubject(errors.ErrCodeStorage, path, err)
		}
		count++
	}
	return count, nil
}

func writeHeader(tw *tar.Writer, hdr *tar.Header) error {
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.WrapSubject(errors.ErrCodeStorage, hdr.Name, err)
	}
	return nil
}

// archiveName stores absolute paths without the leading slash.
func archiveName(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
}

type entry struct {
	path string
	dir  bool
	mode int64
	data []byte
}

// Restore extracts an archive created by Create. The whole archive is
// checked first: entries that are absolute, contain "..", fall outside the
// archiver's roots or are not plain files or directories reject the restore
// before anything is written. Returns the number of files restored.
func (a *Archiver) Restore(archivePath string) (int, error) {
	data, err := a.archives.Read(archivePath)
	if err != nil {
		return 0, err
	}

	entries, err := a.readArchive(data)
	if err != nil {
		return 0, errors.WrapSubject(errors.CodeOf(err), archivePath, err)
	}

	count := 0
	for _, e := range entries {
		if e.dir {
			if err := a.store.MkdirAll(e.path); err != nil {
				return count, err
			}
			continue
		}
		logger.Debug("restore %s", e.path)
		if err := a.store.Write(e.path, e.data, fileMode(e.mode)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (a *Archiver) readArchive(data []byte) ([]entry, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, "not a gzip archive", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var entries []entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, "corrupt archive", err)
		}

		path, err := a.checkName(hdr.Name)
		if err != nil {
			return nil, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			entries = append(entries, entry{path: path, dir: true})
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return nil, errors.WrapSubject(errors.ErrCodeStorage, hdr.Name, err)
			}
			entries = append(entries, entry{path: path, mode: hdr.Mode, data: content})
		default:
			return nil, invalidEntry(hdr.Name, "unsupported entry type")
		}
	}
	return entries, nil
}

func (a *Archiver) checkName(name string) (string, error) {
	trimmed := strings.TrimSuffix(name, "/")
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return "", invalidEntry(name, "absolute or empty path")
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == ".." {
			return "", invalidEntry(name, "path escapes the restore root")
		}
	}

	path := filepath.Clean("/" + trimmed)
	for _, root := range a.roots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return path, nil
		}
	}
	return "", invalidEntry(name, "outside the backed up directories")
}

func invalidEntry(name, reason string) error {
	return &errors.Error{
		Code:    errors.ErrCodeValidation,
		Subject: name,
		Message: "refusing to restore archive entry: " + reason,
	}
}

func fileMode(mode int64) os.FileMode {
	perm := os.FileMode(mode).Perm()
	if perm == 0 {
		return 0644
	}
	return perm
}
