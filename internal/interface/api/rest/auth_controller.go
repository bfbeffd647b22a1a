package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	userDB "filevault-api/internal/infrastructure/db/sqlite/user"
	"filevault-api/internal/interface/api/rest/dto/auth"
	dtoUser "filevault-api/internal/interface/api/rest/dto/user"
	"filevault-api/internal/interface/api/rest/validator"
)

type AuthController struct {
	logger      *zap.Logger
	userService ports.UserService
	authService ports.Auth
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	userService ports.UserService,
	authService ports.Auth,
) *AuthController {
	ac := &AuthController{
		logger:      logger,
		userService: userService,
		authService: authService,
	}

	r.POST(RouteLogin, ac.LoginHandler)
	r.POST(RouteSignup, ac.SignupHandler)

	return ac
}

func (ac *AuthController) SignupHandler(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateSignup(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := ac.userService.Signup(c.Request.Context(), email, strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		if errors.Is(err, userDB.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to create a user"},
		)
		ac.logger.Error("Signup() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, dtoUser.ResponseData{Data: dtoUser.ToResponseUser(*u)})
}

func (ac *AuthController) LoginHandler(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	if errs := validator.ValidateLogin(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := ac.userService.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get a user"},
		)
		ac.logger.Error("FindByEmail() error", zap.Error(err))
		return
	}
	if u == nil {
		// same answer as a wrong password so logins don't leak which
		// emails are registered
		c.JSON(
			http.StatusUnauthorized,
			gin.H{"error": "invalid credentials"},
		)
		return
	}

	token, err := ac.authService.GenerateToken(u, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		ac.logger.Error("GenerateToken() error", zap.Error(err), zap.Stringer("user_uuid", u.UUID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
