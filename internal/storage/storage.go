// Package storage persists receipt images to durable object storage.
package storage

import "context"

// ObjectStore uploads receipt images and returns a stable URL the extraction
// engine and the dashboard can both reference.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}
