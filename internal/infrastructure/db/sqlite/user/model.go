package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		ID           uint64    `gorm:"primaryKey;autoIncrement"`
		UUID         uuid.UUID `gorm:"type:text;uniqueIndex;not null"`
		Email        string    `gorm:"uniqueIndex;not null"`
		PasswordHash *string
		Name         string

		CreatedAt time.Time
	}
	Users []*User
)

func (User) TableName() string { return "users" }
