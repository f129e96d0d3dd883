package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo carries the metadata the media lifecycle needs: the temp
// sweep reads CreatedAt, upload bookkeeping reads Size.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// BlobStore is the narrow surface of the object storage backend the
// application consumes.
type BlobStore interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// Copy duplicates an object server-side. Combined with Delete it is
	// the closest thing to a rename the backend offers; the pair is not
	// atomic.
	Copy(ctx context.Context, srcKey, dstKey string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Metadata(ctx context.Context, key string) (*ObjectInfo, error)
	// URL returns the public URL an already-stored key resolves to.
	URL(key string) string
}
