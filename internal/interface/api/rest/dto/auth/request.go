package auth

type (
	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	SignupRequest struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
)
