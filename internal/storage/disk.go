// Package storage implements the public object store backing avatar
// uploads: named buckets of immutable-by-name blobs on local disk, each
// addressable by a public URL.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// objectNameRegex limits bucket and object names to a safe character set.
var objectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

var (
	ErrInvalidName = errors.New("invalid bucket or object name")
	ErrNotFound    = errors.New("object not found")
)

// DiskStore stores objects as files under root/<bucket>/<name>.
type DiskStore struct {
	root          string
	publicBaseURL string
}

// NewDiskStore creates a disk-backed object store rooted at root.
func NewDiskStore(root, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put writes an object, replacing any existing object of the same name.
func (s *DiskStore) Put(bucket, name string, data []byte) error {
	if !validName(bucket) || !validName(name) {
		return ErrInvalidName
	}
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

// Get reads an object's content.
func (s *DiskStore) Get(bucket, name string) ([]byte, error) {
	if !validName(bucket) || !validName(name) {
		return nil, ErrInvalidName
	}
	data, err := os.ReadFile(filepath.Join(s.root, bucket, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// PublicURL returns the public URL an object is served under.
func (s *DiskStore) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/storage/%s/%s", s.publicBaseURL, bucket, name)
}

func validName(s string) bool {
	return objectNameRegex.MatchString(s) && !strings.Contains(s, "..")
}
