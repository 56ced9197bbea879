package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID         uuid.UUID `json:"id"`
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		SizeHuman  string    `json:"size_human"`
		MimeType   string    `json:"mime_type"`
		Kind       string    `json:"kind"`
		ShareURL   string    `json:"share_url"`
		AccessURL  string    `json:"access_url"`
		UploadedAt time.Time `json:"uploaded_at"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
)
