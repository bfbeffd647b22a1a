package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "filevault-api/internal/domain/user"
)

var ErrEmailAlreadyExists = errors.New("email already exists")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (domain.Repository, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) FetchUserByUUID(ctx context.Context, userUUID domain.UUID) (*domain.User, error) {
	u := new(User)
	err := r.db.WithContext(ctx).First(u, "uuid = ?", userUUID.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := new(User)
	err := r.db.WithContext(ctx).First(u, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) CreateUser(ctx context.Context, req domain.User) (*domain.User, error) {
	u := &User{
		UUID:         uuid.New(),
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Name:         req.Name,
	}

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return fromDBModel(u), nil
}
