package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// MetaOriginalFilename is the user metadata key holding the uploaded file's name.
const MetaOriginalFilename = "original-filename"

// Package storage contains the asset store abstraction over S3-compatible object stores.
// Implementations rely on streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// OriginalFilename returns the MetaOriginalFilename metadata value, or "" when unset.
// Backends may canonicalize metadata keys, so the lookup ignores case.
func (o ObjectInfo) OriginalFilename() string {
	for k, v := range o.Metadata {
		if strings.EqualFold(k, MetaOriginalFilename) {
			return v
		}
	}
	return ""
}

// Storage is the asset store used by the ingestion pipeline and the gallery.
// Assets are addressed by their object key, which doubles as the asset reference.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	// Putting the same key twice overwrites the object.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	// The download is named filename, or the key's base name when filename is empty.
	PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}
