package ports

import (
	"context"

	"filevault-api/internal/domain/user"
)

type UserService interface {
	FindByUUID(ctx context.Context, uuid user.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Signup(ctx context.Context, email, name, password string) (*user.User, error)
}
