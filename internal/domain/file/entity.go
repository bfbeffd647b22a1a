package file

import (
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/user"
)

type (
	// Record describes one stored file. It is immutable after upload: the
	// only lifecycle transition is removal, which also deletes the blob.
	Record struct {
		ID      uuid.UUID `json:"id"`
		BlobKey string    `json:"blob_key"`
		OwnerID user.UUID `json:"owner_id"`

		Name         string    `json:"name"`
		MimeType     string    `json:"mime_type"`
		SizeBytes    int64     `json:"size_bytes"`
		LastModified time.Time `json:"last_modified"`
		Category     Category  `json:"category"`
	}
	Records []*Record
)

// Input is one file handed over by the caller at upload time.
type Input struct {
	Name         string
	MimeType     string
	LastModified time.Time
	Content      []byte
}

type (
	// Rejected explains why one input of an upload batch was not stored.
	Rejected struct {
		Name   string
		Reason string
	}
	UploadResult struct {
		Accepted Records
		Rejected []Rejected
	}
)
