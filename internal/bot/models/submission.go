package models

import "time"

// Submission records one accepted homework document. A row exists only for
// blobs that object storage has already accepted; history is append-only.
type Submission struct {
	ID     int64
	UserID int64
	// FileName is the original document name as shown to the user.
	FileName string
	// StorageKey is the opaque object-storage identifier of the blob.
	StorageKey  string
	SubmittedAt time.Time
}
