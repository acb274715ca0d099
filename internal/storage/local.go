// Package storage persists uploaded document bytes on local disk.  Files
// are written under a collision-resistant generated name and served back
// through the static /uploads route; the metadata record lives in the
// documents collection and handlers keep the two in sync.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize is the upload ceiling in bytes (10 MiB).
const MaxFileSize = 10 << 20

// allowedExt lists the accepted file extensions: documents and common
// image types, lowercase, with the leading dot.
var allowedExt = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AllowedExt reports whether the file name carries an accepted extension.
func AllowedExt(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// Store writes and removes uploaded files inside a single directory.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a Store for it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored under.
func (s *Store) Dir() string { return s.dir }

// Save streams r into a new file named by a fresh UUID plus the original
// extension.  It returns the generated name and the full path.  On a
// write error the partial file is removed so no orphan bytes remain.
func (s *Store) Save(r io.Reader, originalName string) (name, path string, err error) {
	name = uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path = filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", "", err
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	return name, path, nil
}

// Remove deletes a stored file by its generated name.  A file that is
// already gone is not an error: cleanup must succeed even when the disk
// and the metadata record have drifted apart.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
