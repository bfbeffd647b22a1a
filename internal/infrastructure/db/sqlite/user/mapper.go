package user

import (
	domain "filevault-api/internal/domain/user"
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
