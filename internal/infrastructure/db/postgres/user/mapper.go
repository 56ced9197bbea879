package user

import (
	domain "github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

func fromDBModel(model *User) *domain.User {
	var u = &domain.User{
		UUID:         model.UUID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Name:         model.Name,

		CreatedAt: model.CreatedAt,
	}

	return u
}
