package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID      uuid.UUID
		OwnerID uuid.UUID

		Name      string
		SizeBytes int64
		MimeType  string
		BlobPath  string
		ShareURL  string

		UploadedAt time.Time
	}
	Files []*File
)
