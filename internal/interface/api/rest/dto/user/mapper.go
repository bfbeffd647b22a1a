package user

import (
	domain "filevault-api/internal/domain/user"
)

func ToResponseUser(uDomain domain.User) User {
	return User{
		UUID:      uDomain.UUID,
		Email:     uDomain.Email,
		Name:      uDomain.Name,
		CreatedAt: uDomain.CreatedAt,
	}
}
