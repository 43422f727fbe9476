// Package storage persists uploaded documents and returns their public URL.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DocumentStore stores a document for owner and returns a retrievable URL.
type DocumentStore interface {
	Put(ctx context.Context, ownerID, kind, ext string, data []byte) (string, error)
}

// LocalStore writes documents under Root and serves them under PublicPrefix.
type LocalStore struct {
	Root         string
	PublicPrefix string
	now          func() time.Time
}

func NewLocalStore(root, publicPrefix string) *LocalStore {
	return &LocalStore{Root: root, PublicPrefix: strings.TrimRight(publicPrefix, "/"), now: time.Now}
}

// Put writes <Root>/<ownerID>/<kind>_<unixnano>.<ext>.
func (s *LocalStore) Put(ctx context.Context, ownerID, kind, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !safeSegment(ownerID) || !safeSegment(kind) || !safeSegment(ext) {
		return "", fmt.Errorf("storage: invalid path segment")
	}
	dir := filepath.Join(s.Root, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	name := fmt.Sprintf("%s_%d.%s", kind, s.now().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write: %w", err)
	}
	return path.Join(s.PublicPrefix, ownerID, name), nil
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// ParsePath splits a stored document path "<ownerID>/<kind>_<n>.<ext>" into
// its owner and kind.
func ParsePath(p string) (ownerID, kind string, ok bool) {
	ownerID, name, found := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if !found || !safeSegment(ownerID) || !safeSegment(name) {
		return "", "", false
	}
	i := strings.LastIndex(name, "_")
	if i <= 0 {
		return "", "", false
	}
	return ownerID, name[:i], true
}

// FileSystem serves stored documents without directory listings.
type FileSystem struct {
	http.FileSystem
}

func NewFileSystem(root string) FileSystem {
	return FileSystem{http.Dir(root)}
}

// Open reports directories as missing.
func (f FileSystem) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
