package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	// Put writes r under key. size may be -1 when unknown.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// CleanKey normalizes a slash-separated key and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return "", errors.New("invalid storage key")
	}
	clean := strings.TrimLeft(path.Clean("/"+key), "/")
	if clean == "" {
		return "", errors.New("invalid storage key")
	}
	return clean, nil
}
