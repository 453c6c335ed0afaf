// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/app/services"
	"github.com/walkandtalk/walktalk/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: resp})
}

// Login handles email and password sign-in
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// LoginWithProvider handles sign-in through the external identity provider
func (c *AuthController) LoginWithProvider(ctx *gin.Context) {
	var req dto.ProviderLoginRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.LoginWithProvider(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Provider login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// RefreshToken rotates a refresh token into a new token pair
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Token refresh failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Logout revokes the authenticated user's refresh tokens
func (c *AuthController) Logout(ctx *gin.Context) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication required")))
		return
	}

	if err := c.authService.Logout(ctx, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.SuccessResponse{Message: "Logged out"}})
}
