package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		UUID      uuid.UUID `json:"uuid"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}
	ResponseData struct {
		Data User `json:"data"`
	}
)
