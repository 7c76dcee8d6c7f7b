// Package storage uploads staged documents to S3-compatible object storage.
package storage

import "context"

// Client is the object-storage capability the pipeline depends on.
type Client interface {
	// Put uploads the file at localPath under the user's namespace and
	// returns the opaque storage key identifying the blob.
	Put(ctx context.Context, userID int64, localPath, fileName, mimeType string) (string, error)
}
