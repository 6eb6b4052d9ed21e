// Package storage keeps uploaded attachment bytes on a filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/tasklist/tasklist-api/internal/crypto"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// allowed maps permitted extensions to the content types they may sniff as.
var allowed = map[string][]string{
	"jpeg": {"image/jpeg"},
	"jpg":  {"image/jpeg"},
	"png":  {"image/png"},
	"pdf":  {"application/pdf"},
}

// AllowedTypes lists the accepted extensions, for messages.
const AllowedTypes = "jpeg, jpg, png, pdf"

// Store writes and removes blobs under a root filesystem.
type Store struct {
	fs       afero.Fs
	maxBytes int64
	now      func() time.Time
}

// NewStore returns a Store rooted at dir on the OS filesystem.
func NewStore(dir string, maxKB int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return NewStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), maxKB), nil
}

// NewStoreFs returns a Store over an arbitrary afero filesystem.
func NewStoreFs(fs afero.Fs, maxKB int) *Store {
	return &Store{fs: fs, maxBytes: int64(maxKB) * 1024, now: time.Now}
}

// MaxKB is the upload size limit in kilobytes.
func (s *Store) MaxKB() int64 { return s.maxBytes / 1024 }

// Object describes a stored blob.
type Object struct {
	Filename     string
	OriginalName string
	Ext          string
	Dir          string
}

// Key is the blob's path relative to the store root.
func (o Object) Key() string { return path.Join(o.Dir, o.Filename) }

// Put validates r against the allow-list and size limit and writes it under dir
// with a generated name. originalName is the client's file name.
func (s *Store) Put(dir, originalName string, r io.Reader) (Object, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	types, ok := allowed[ext]
	if !ok {
		return Object{}, ErrUnsupportedType
	}

	// Read one byte past the limit so oversize uploads are detected without buffering them.
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return Object{}, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return Object{}, ErrFileTooLarge
	}

	sniffed := http.DetectContentType(data)
	if !matches(sniffed, types) {
		return Object{}, ErrUnsupportedType
	}

	name, err := s.generateName(ext)
	if err != nil {
		return Object{}, err
	}

	obj := Object{
		Filename:     name,
		OriginalName: strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)),
		Ext:          ext,
		Dir:          dir,
	}

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return Object{}, fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := afero.WriteFile(s.fs, obj.Key(), data, 0o644); err != nil {
		return Object{}, fmt.Errorf("writing %s: %w", obj.Key(), err)
	}

	return obj, nil
}

// Delete removes the blob at key. A missing blob is not an error.
func (s *Store) Delete(key string) error {
	err := s.fs.Remove(key)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// generateName builds task-list-<yymmdd><unix>-<random>.<ext>.
func (s *Store) generateName(ext string) (string, error) {
	suffix, err := crypto.RandomString(8)
	if err != nil {
		return "", fmt.Errorf("generating file name: %w", err)
	}
	now := s.now()
	return fmt.Sprintf("task-list-%s%d-%s.%s", now.Format("060102"), now.Unix(), suffix, ext), nil
}

func matches(sniffed string, types []string) bool {
	for _, t := range types {
		if strings.HasPrefix(sniffed, t) {
			return true
		}
	}
	return false
}
