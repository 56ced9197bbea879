package user

import (
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

func ToResponseUser(uDomain user.User) User {
	var u = User{
		UUID:        uDomain.UUID,
		Email:       uDomain.Email,
		Name:        uDomain.Name,
		DisplayName: uDomain.DisplayName(),
		CreatedAt:   uDomain.CreatedAt,
	}

	return u
}
