package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"filevault-api/internal/application/ports"
	domain "filevault-api/internal/domain/user"
)

type UserService struct {
	userRepository domain.Repository
	mCounter       *prometheus.CounterVec
}

func NewUserService(
	userRepository domain.Repository,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		userRepository: userRepository,
		mCounter:       mCounter,
	}
}

func (us *UserService) FindByUUID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := us.userRepository.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (us *UserService) Signup(ctx context.Context, email, name, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	hashStr := string(hash)
	uRet, err := us.userRepository.CreateUser(ctx, domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hashStr,
	})
	if err != nil {
		return nil, err
	}

	us.mCounter.WithLabelValues("vault_users_created_total").Inc()

	return uRet, nil
}
