package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/OffCrazyFreak/Pogled-app/models"
	"github.com/OffCrazyFreak/Pogled-app/services"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingError(err)})
		return
	}

	token, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "user already exists"})
			return
		}
		log.Error().Err(err).Msg("registration failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "registration failed"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "token": token})
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingError(err)})
		return
	}

	token, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Msg("login failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "login failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// Logout acknowledges the request. Tokens are stateless; the client discards
// its copy.
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// bindingError turns validator errors into a short field-level message
// instead of the raw error string.
func bindingError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return "invalid request body"
}
