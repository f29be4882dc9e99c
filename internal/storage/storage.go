package storage

import (
	"context"
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectVersion is one record in an object's version history: either a
// content version or a delete marker.
type ObjectVersion struct {
	Key            string
	VersionID      string
	IsLatest       bool
	IsDeleteMarker bool
	LastModified   time.Time
	Size           int64
}

// ObjectReader lists and reads current object versions.
type ObjectReader interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectWriter writes a new current version of an object.
type ObjectWriter interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// VersionManager inspects version history and promotes old versions.
type VersionManager interface {
	// ListObjectVersions returns every version and delete marker of exactly
	// key, in the order the store reports them.
	ListObjectVersions(ctx context.Context, key string) ([]ObjectVersion, error)
	// CopyObjectVersion copies versionID of key onto key, making it current.
	CopyObjectVersion(ctx context.Context, key, versionID string) error
}

// ObjectStorage captures the S3-compatible operations the jobs need.
type ObjectStorage interface {
	ObjectReader
	ObjectWriter
	VersionManager
}
