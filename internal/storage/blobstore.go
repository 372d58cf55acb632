package storage

import "context"

// Upload result: the public URL to serve the image from and the opaque
// key needed to delete it later.
type UploadResult struct {
	URL string
	Key string
}

// BlobStore is the external object storage holding post thumbnails and
// user avatars. Implementations must not retry internally; callers decide
// whether a failed delete aborts the surrounding operation.
type BlobStore interface {
	Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}
