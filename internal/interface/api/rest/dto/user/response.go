package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		UUID        uuid.UUID `json:"uuid"`
		Email       string    `json:"email"`
		Name        string    `json:"name"`
		DisplayName string    `json:"display_name"`
		CreatedAt   time.Time `json:"created_at"`
	}
)
