package user

import (
	"context"
)

// Repository is the locally persisted credential set.
type Repository interface {
	FetchUserByUUID(ctx context.Context, uuid UUID) (*User, error)
	FetchUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, req User) (*User, error)
}
