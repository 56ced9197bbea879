package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	UUID = uuid.UUID
	User struct {
		UUID         UUID
		Email        string
		PasswordHash string
		Name         string

		CreatedAt time.Time
	}
	Users []*User
)

// DisplayName falls back to the local part of the e-mail when no name was given.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
