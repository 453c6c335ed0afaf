// Package routes wires HTTP endpoints to their handlers
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/walkandtalk/walktalk/internal/app/controllers"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/gateway"
	"github.com/walkandtalk/walktalk/internal/middleware"
)

// SetupRouter configures all application routes. The REST surface covers
// authentication only; everything after sign-in flows through the
// WebSocket gateway.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	gatewayHandler *gateway.Handler,
	authMiddleware *middleware.AuthMiddleware,
	uploadsDir string,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/provider-login", authController.LoginWithProvider)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
	}

	// WebSocket gateway. JWTAuth accepts the token via query parameter
	// here because browsers cannot set headers on upgrade requests.
	router.GET("/ws", authMiddleware.JWTAuth(), gatewayHandler.Serve)

	// Uploaded avatars and event images
	router.Static("/uploads", uploadsDir)

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
