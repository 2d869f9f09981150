package domain

import "context"

// BlobStore is the external file store. Upload returns the opaque
// storage path used to address the blob later; paths are write-once
// per submission.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// Rasterizer converts the first page of a PDF into a preview image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]byte, error)
}
