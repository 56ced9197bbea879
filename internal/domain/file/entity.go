package file

import (
	"time"

	"github.com/google/uuid"

	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

type (
	ID   = uuid.UUID
	File struct {
		ID      ID
		OwnerID user.UUID

		Name     string
		Size     int64
		MimeType string
		BlobPath string
		ShareURL string

		UploadedAt time.Time

		// AccessURL is minted on every read and never stored.
		AccessURL string
	}
	Files []*File
)
