package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/jwt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrFailedToGenerateToken = errors.New("failed to generate token")
)

const sessionTTL = 12 * time.Hour

type AuthService struct {
	jwtService *jwt.Service
}

func NewAuthService(
	jwtService *jwt.Service,
) ports.Auth {
	return &AuthService{
		jwtService: jwtService,
	}
}

func (as *AuthService) GenerateToken(u *user.User, requestPassword string) (string, error) {
	if u.PasswordHash == nil {
		return "", ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(requestPassword))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := as.jwtService.GenerateJWT(u.UUID.String(), sessionTTL)
	if err != nil {
		return "", ErrFailedToGenerateToken
	}

	return token, nil
}
