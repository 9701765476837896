package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCSStore stores objects in a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// Compile-time check that GCSStore implements ObjectStore.
var _ ObjectStore = (*GCSStore)(nil)

// NewGCSStore creates a store backed by the given bucket.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Upload writes the object and returns its public URL. The bucket is expected
// to allow public reads so the vision model can fetch the image by URL.
func (s *GCSStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object writer %q: %w", objectName, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
